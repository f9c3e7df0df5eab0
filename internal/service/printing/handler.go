// Package printing отдаёт печатные документы кухни по HTTP: PDF-тикеты партиций и xlsx-сводку недели.
package printing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"

	"github.com/alejoevilches/laabuelachela/internal/domain"
	"github.com/alejoevilches/laabuelachela/internal/render"
	"github.com/alejoevilches/laabuelachela/internal/service/kitchen"
)

const (
	// DefaultDocumentCacheSize задаёт, сколько отрисованных PDF держать в памяти.
	DefaultDocumentCacheSize = 32

	headerDocumentCache = "X-Document-Cache"
	contentTypePDF      = "application/pdf"
	contentTypeXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// docKey однозначно определяет содержимое документа: партиция меняет generation при любой правке.
type docKey struct {
	status     domain.OrderStatus
	generation uint64
}

// Handler обслуживает маршруты печати.
type Handler struct {
	svc    *kitchen.Service
	docs   *lru.Cache[docKey, []byte]
	logger *log.Entry
}

// NewHandler создаёт handler с LRU-кэшем отрисованных PDF.
func NewHandler(svc *kitchen.Service, cacheSize int, logger *log.Entry) (*Handler, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultDocumentCacheSize
	}
	docs, err := lru.New[docKey, []byte](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create document cache: %w", err)
	}
	if logger == nil {
		logger = log.WithField("component", "printing")
	}
	return &Handler{svc: svc, docs: docs, logger: logger}, nil
}

// RegisterRoutes подключает маршруты к роутеру.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/print/{status}", h.PrintOrders)
	r.Get("/summary.xlsx", h.WeeklySummary)
}

// PrintOrders отдаёт PDF с карточками заказов партиции.
func (h *Handler) PrintOrders(w http.ResponseWriter, r *http.Request) {
	status, err := domain.ParseOrderStatus(chi.URLParam(r, "status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	job, err := h.svc.PrintOrders(r.Context(), status)
	if err != nil {
		h.fail(w, "print orders", err)
		return
	}

	key := docKey{status: status, generation: job.Generation}
	body, hit := h.docs.Get(key)
	if !hit {
		var buf bytes.Buffer
		if err := render.RenderPDF(&buf, job.Document); err != nil {
			h.fail(w, "render pdf", err)
			return
		}
		body = buf.Bytes()
		h.docs.Add(key, body)
	}

	w.Header().Set("Content-Type", contentTypePDF)
	w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=orders-%s.pdf", status))
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.Header().Set(headerDocumentCache, cacheLabel(hit))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// WeeklySummary отдаёт xlsx со сводкой текущей недели. ?force=true перечитывает pending-партицию.
func (h *Handler) WeeklySummary(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))

	report, err := h.svc.WeeklySummary(r.Context(), force)
	if err != nil {
		h.fail(w, "weekly summary", err)
		return
	}

	var buf bytes.Buffer
	if err := render.WriteWeeklySummaryXLSX(&buf, report.WeekStart, report.Entries); err != nil {
		h.fail(w, "render xlsx", err)
		return
	}

	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=summary-%s.xlsx", report.WeekStart.Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	code := statusOf(err)
	entry := h.logger.WithError(err).WithField("op", op)
	if code >= http.StatusInternalServerError {
		entry.Error("printing request failed")
	} else {
		entry.Debug("printing request rejected")
	}
	writeError(w, code, err)
}

func statusOf(err error) int {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrLayoutOverflow):
		return http.StatusUnprocessableEntity
	case domain.IsRemoteFailure(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func cacheLabel(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func writeError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
