package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mrops-br/karachi-couture/internal/app/catalog"
	"github.com/mrops-br/karachi-couture/internal/app/dto"
	"github.com/mrops-br/karachi-couture/internal/domain"
	"github.com/mrops-br/karachi-couture/internal/infrastructure/http/render"
	"github.com/mrops-br/karachi-couture/internal/infrastructure/telemetry"
)

const SessionCookieName = "kc_session"

// BackendProber is what the status page needs to check the product API
type BackendProber interface {
	BaseURL() string
	ListProducts(ctx context.Context, category domain.Category) (dto.ProductList, error)
}

// StorefrontHandler serves the storefront pages
type StorefrontHandler struct {
	sessions   *catalog.Sessions
	renderer   *render.Renderer
	prober     BackendProber
	sessionTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewStorefrontHandler creates a new storefront handler
func NewStorefrontHandler(
	sessions *catalog.Sessions,
	renderer *render.Renderer,
	prober BackendProber,
	sessionTTL time.Duration,
	logger *slog.Logger,
) *StorefrontHandler {
	return &StorefrontHandler{
		sessions:   sessions,
		renderer:   renderer,
		prober:     prober,
		sessionTTL: sessionTTL,
		logger:     logger,
		now:        time.Now,
	}
}

// Home handles GET /. Every page view refreshes the list with the selected
// category, or with the one given in ?category=.
func (h *StorefrontHandler) Home(w http.ResponseWriter, r *http.Request) {
	view, r := h.resolveView(w, r)
	ctx := r.Context()

	category, err := h.requestedCategory(r, view)
	if err != nil {
		h.logger.WarnContext(ctx, "Unknown category requested",
			slog.String("error", err.Error()),
		)
		shop := render.NewShopData(view.Snapshot())
		shop.StatusMessage = fmt.Sprintf("Unknown category %q.", r.URL.Query().Get("category"))
		h.writePage(w, r, http.StatusBadRequest, shop)
		return
	}

	view.SelectCategory(ctx, category)
	h.writePage(w, r, http.StatusOK, render.NewShopData(view.Snapshot()))
}

// Shop handles GET /shop, rendering only the shop section. Without a
// category it renders the current state as is, in flight fetches included.
func (h *StorefrontHandler) Shop(w http.ResponseWriter, r *http.Request) {
	view, r := h.resolveView(w, r)
	ctx := r.Context()

	status := http.StatusOK
	if raw := r.URL.Query().Get("category"); raw != "" {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			status = http.StatusBadRequest
		} else {
			view.SelectCategory(ctx, category)
		}
	} else if !view.Started() {
		view.FetchProducts(ctx, view.Snapshot().Category)
	}

	shop := render.NewShopData(view.Snapshot())
	if status == http.StatusBadRequest {
		shop.StatusMessage = fmt.Sprintf("Unknown category %q.", r.URL.Query().Get("category"))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.renderer.Shop(w, shop); err != nil {
		h.logger.ErrorContext(ctx, "Failed to render shop", slog.String("error", err.Error()))
	}
}

// Seed handles POST /seed and sends the browser back to the shop section
func (h *StorefrontHandler) Seed(w http.ResponseWriter, r *http.Request) {
	view, r := h.resolveView(w, r)

	view.SeedSampleData(r.Context())

	http.Redirect(w, r, "/#shop", http.StatusSeeOther)
}

// Status handles GET /test, reporting whether the backend answers
func (h *StorefrontHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	start := h.now()
	list, err := h.prober.ListProducts(ctx, domain.CategoryAll)
	data := render.StatusData{
		BackendURL: h.prober.BaseURL(),
		Reachable:  err == nil,
		Latency:    h.now().Sub(start).Round(time.Millisecond),
		Sessions:   h.sessions.Len(),
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusServiceUnavailable
		data.Error = err.Error()
		h.logger.WarnContext(ctx, "Backend status check failed",
			slog.String("error", err.Error()),
		)
	} else {
		data.ProductCount = len(list.Products)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.renderer.Status(w, data); err != nil {
		h.logger.ErrorContext(ctx, "Failed to render status page", slog.String("error", err.Error()))
	}
}

func (h *StorefrontHandler) requestedCategory(r *http.Request, view *catalog.View) (domain.Category, error) {
	raw := r.URL.Query().Get("category")
	if raw == "" {
		return view.Snapshot().Category, nil
	}
	return domain.ParseCategory(raw)
}

// resolveView finds the shopper's view and (re)issues the session cookie
func (h *StorefrontHandler) resolveView(w http.ResponseWriter, r *http.Request) (*catalog.View, *http.Request) {
	var id string
	if c, err := r.Cookie(SessionCookieName); err == nil {
		id = c.Value
	}

	view, id, created := h.sessions.Get(r.Context(), id)
	if created {
		h.logger.DebugContext(r.Context(), "Started shopper session", slog.String("session.id", id))
	}

	// Re-issued on every request so the cookie slides with the server-side TTL.
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(h.sessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	return view, r.WithContext(telemetry.WithSessionID(r.Context(), id))
}

func (h *StorefrontHandler) writePage(w http.ResponseWriter, r *http.Request, status int, shop render.ShopData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)

	err := h.renderer.Page(w, render.PageData{
		Shop: shop,
		Year: h.now().Year(),
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to render page", slog.String("error", err.Error()))
	}
}
