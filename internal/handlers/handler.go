package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/harentsoaR/diagnosia-api/internal/lock"
	"github.com/harentsoaR/diagnosia-api/internal/models"
	"github.com/harentsoaR/diagnosia-api/internal/services"
	"github.com/harentsoaR/diagnosia-api/internal/store"
	"github.com/harentsoaR/diagnosia-api/internal/utils"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Handler carries the dependencies every route needs. It is built once at
// startup and its methods are registered as gin handlers.
type Handler struct {
	Store    *store.Store
	Sessions *utils.SessionSigner
	Booking  *services.BookingService
	Reports  *services.ReportService
	Banners  *services.BannerService
	Payments *services.PaymentService
	Uploads  *services.UploadService

	// Production switches the session cookie to Secure with SameSite=None.
	Production bool
}

// NewHandler wires the domain services over st. The locker only guards
// banner activation; nil disables cross-instance locking.
func NewHandler(st *store.Store, sessions *utils.SessionSigner, locker lock.Locker,
	payments *services.PaymentService, uploads *services.UploadService, production bool) *Handler {
	if locker == nil {
		locker = lock.Noop{}
	}
	if payments == nil {
		payments = services.NewPaymentService(nil, "")
	}
	if uploads == nil {
		uploads = services.NewUploadService(nil)
	}
	return &Handler{
		Store:      st,
		Sessions:   sessions,
		Booking:    services.NewBookingService(st.Tests, st.Appointments),
		Reports:    services.NewReportService(st.Reports, st.Appointments),
		Banners:    services.NewBannerService(st.Banners, locker),
		Payments:   payments,
		Uploads:    uploads,
		Production: production,
	}
}

func init() {
	// Submitted documents keep numbers as sent instead of widening them to float64.
	binding.EnableDecoderUseNumber = true
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("objectid", func(fl validator.FieldLevel) bool {
			return primitive.IsValidObjectID(fl.Field().String())
		})
	}
}

// fail maps err onto a response. Unknown errors are logged and answered with
// a generic message so driver details never reach the caller.
func fail(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, store.ErrInvalidID):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
	case errors.Is(err, services.ErrMissingTestName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrNoSlotsAvailable):
		c.JSON(http.StatusConflict, gin.H{"error": "No slots available for this test"})
	case errors.Is(err, lock.ErrLockNotAcquired):
		c.JSON(http.StatusConflict, gin.H{"error": "Another update is in progress, try again"})
	case errors.Is(err, services.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrPaymentsDisabled), errors.Is(err, services.ErrUploadsDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("route", c.FullPath()).Msg(msg)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
	}
}

type idParam struct {
	ID string `uri:"id" binding:"required,objectid"`
}

// pathID returns the :id path parameter, answering 400 when it is not an ObjectID.
func pathID(c *gin.Context) (string, bool) {
	var p idParam
	if err := c.ShouldBindUri(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return "", false
	}
	return p.ID, true
}

// bindDocument decodes the request body as a JSON object, keeping every field.
func bindDocument(c *gin.Context) (models.Document, bool) {
	var doc models.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		badRequest(c, err)
		return nil, false
	}
	if doc == nil {
		doc = models.Document{}
	}
	return doc, true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}
