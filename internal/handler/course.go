package handler

import (
	"net/http"

	"coursecatalog/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CourseHandler interface {
	ListCourses(c *gin.Context)
}

type courseHandler struct {
	courseService service.CourseService
	logger        *zap.Logger
}

func NewCourseHandler(courseService service.CourseService, logger *zap.Logger) CourseHandler {
	return &courseHandler{courseService: courseService, logger: logger}
}

// ListCourses handles GET /api/courses?limit=&search=
func (h *courseHandler) ListCourses(c *gin.Context) {
	q := service.ParseCourseQuery(c.Query("limit"), c.Query("search"))

	payload, err := h.courseService.ListCourses(c.Request.Context(), q)
	if err != nil {
		// Already logged with query detail by the service.
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch courses"})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", payload)
}
