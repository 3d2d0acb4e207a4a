package router

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/order"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/payment"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/product"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/section"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/setting"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/subscriber"
	subscriberrepo "github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/subscriber/repo"
	"github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/user"
	userentity "github.com/kolkiman1/zen-z-luxe-weaver-sub002/internal/user/entity"
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			status := lrw.status
			if status == 0 {
				status = http.StatusOK
			}
			logger.Debugw("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", status,
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Prevent MIME sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Clickjacking protection
			w.Header().Set("X-Frame-Options", "DENY")

			// Referrer policy
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")

			// Tighten common browser features; this is a JSON API
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}

			// HSTS only when the request already arrived over TLS
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Deps bundles the services the router mounts.
type Deps struct {
	Logger      *zap.SugaredLogger
	Orders      *order.Service
	Products    *product.Service
	Sections    *section.Service
	Settings    *setting.Service
	Payments    *payment.Service
	Users       *user.Service
	Subscribers *subscriberrepo.Repo
}

// RegisterRoutes mounts HTTP handlers using the standard library's http.ServeMux.
func RegisterRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()

	// health
	mux.HandleFunc("GET /genzee-api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	requireAdmin := adminOnly(d.Users)

	// storefront
	productHandler := product.NewHandler(d.Products, d.Logger)
	mux.HandleFunc("GET /genzee-api/products", productHandler.List)
	mux.HandleFunc("GET /genzee-api/products/{slug}", productHandler.GetBySlug)

	sectionHandler := section.NewHandler(d.Sections, d.Logger)
	mux.HandleFunc("GET /genzee-api/sections", sectionHandler.Visible)

	orderHandler := order.NewHandler(d.Orders, d.Logger)
	mux.HandleFunc("POST /genzee-api/checkout", orderHandler.Checkout)
	mux.HandleFunc("POST /genzee-api/orders/guest-lookup", orderHandler.GuestLookup)

	paymentHandler := payment.NewHandler(d.Payments, d.Logger)
	mux.HandleFunc("POST /genzee-api/payments/manual", paymentHandler.Submit)
	mux.HandleFunc("POST /genzee-api/payments/stripe/webhook", paymentHandler.StripeWebhook)

	subscriberHandler := subscriber.NewHandler(d.Subscribers, d.Logger)
	mux.HandleFunc("POST /genzee-api/subscribe", subscriberHandler.Subscribe)

	// auth
	userHandler := user.NewHandler(d.Users, d.Logger)
	mux.HandleFunc("POST /genzee-api/auth/signup", userHandler.Signup)
	mux.HandleFunc("POST /genzee-api/auth/login", userHandler.Login)
	mux.HandleFunc("POST /genzee-api/auth/refresh", userHandler.Refresh)

	// admin
	mux.HandleFunc("GET /genzee-api/admin/orders", requireAdmin(orderHandler.List))
	mux.HandleFunc("PATCH /genzee-api/admin/orders/{number}/status", requireAdmin(orderHandler.UpdateStatus))

	mux.HandleFunc("POST /genzee-api/admin/products", requireAdmin(productHandler.Create))
	mux.HandleFunc("PUT /genzee-api/admin/products/{id}", requireAdmin(productHandler.Update))
	mux.HandleFunc("DELETE /genzee-api/admin/products/{id}", requireAdmin(productHandler.Archive))

	mux.HandleFunc("GET /genzee-api/admin/payments/pending", requireAdmin(paymentHandler.ListPending))
	mux.HandleFunc("POST /genzee-api/admin/payments/{id}/verify", requireAdmin(paymentHandler.Verify))
	mux.HandleFunc("POST /genzee-api/admin/payments/{id}/reject", requireAdmin(paymentHandler.Reject))

	mux.HandleFunc("GET /genzee-api/admin/sections", requireAdmin(sectionHandler.Resolved))
	mux.HandleFunc("PUT /genzee-api/admin/sections", requireAdmin(sectionHandler.Update))

	settingHandler := setting.NewHandler(d.Settings, d.Logger)
	mux.HandleFunc("GET /genzee-api/admin/settings", requireAdmin(settingHandler.List))
	mux.HandleFunc("GET /genzee-api/admin/settings/{key}", requireAdmin(settingHandler.Get))
	mux.HandleFunc("PUT /genzee-api/admin/settings/{key}", requireAdmin(settingHandler.Put))
	mux.HandleFunc("DELETE /genzee-api/admin/settings/{key}", requireAdmin(settingHandler.Delete))

	mux.HandleFunc("GET /genzee-api/admin/subscribers", requireAdmin(subscriberHandler.List))

	// wrap with security headers middleware then logging middleware
	handler := LoggingMiddleware(d.Logger)(SecurityHeadersMiddleware()(mux))
	return handler
}

// adminOnly guards an endpoint behind a Bearer token carrying the admin role.
func adminOnly(users *user.Service) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			tokenString, ok := strings.CutPrefix(auth, "Bearer ")
			if !ok || tokenString == "" {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			claims, err := users.ParseToken(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid token")
				return
			}
			if claims.Role != userentity.RoleAdmin {
				writeError(w, http.StatusForbidden, "admin access required")
				return
			}
			next(w, r)
		}
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
