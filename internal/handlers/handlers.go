// Package handlers adapts the services to HTTP. Each endpoint decodes a typed request,
// calls one service method and writes JSON.
package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"storefront-backend/internal/media"
	"storefront-backend/internal/middleware"
	"storefront-backend/internal/services"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// Route maps a method and path to its handler chain.
type Route struct {
	Method   string
	Path     string
	Handlers gin.HandlersChain
}

// Register mounts routes on r.
func Register(r gin.IRoutes, routes []Route) {
	for _, rt := range routes {
		r.Handle(rt.Method, rt.Path, rt.Handlers...)
	}
}

type Deps struct {
	Identity  *services.IdentityService
	Guard     *services.Guard
	Cart      *services.CartService
	Catalog   *services.CatalogService
	Inquiries *services.InquiryService
	Users     *services.UserAdminService
	// Images is nil when object storage is not configured.
	Images *media.Images
	Logger zerolog.Logger
}

type Handler struct {
	identity  *services.IdentityService
	guard     middleware.Authenticator
	cart      *services.CartService
	catalog   *services.CatalogService
	inquiries *services.InquiryService
	users     *services.UserAdminService
	images    *media.Images
	logger    zerolog.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		identity:  d.Identity,
		guard:     d.Guard,
		cart:      d.Cart,
		catalog:   d.Catalog,
		inquiries: d.Inquiries,
		users:     d.Users,
		images:    d.Images,
		logger:    d.Logger,
	}
}

func route(method, path string, handlers ...gin.HandlerFunc) Route {
	return Route{Method: method, Path: path, Handlers: handlers}
}

// Routes returns the full API table.
func (h *Handler) Routes() []Route {
	user := middleware.RequireUser(h.guard, h.logger)
	admin := middleware.RequireAdmin(h.guard, h.logger)

	routes := []Route{
		route(http.MethodGet, "/", h.Health),

		route(http.MethodPost, "/auth/register", h.Register),
		route(http.MethodPost, "/auth/login", h.Login),
		route(http.MethodGet, "/auth/me", h.Me),

		route(http.MethodGet, "/cart", user, h.GetCart),
		route(http.MethodPost, "/cart/merge", user, h.MergeCart),
		route(http.MethodPost, "/cart/sync", user, h.SyncCart),
		route(http.MethodPost, "/cart/add", user, h.AddToCart),
		route(http.MethodDelete, "/cart/:productId", user, h.RemoveFromCart),
		route(http.MethodDelete, "/cart", user, h.ClearCart),

		route(http.MethodPost, "/products", admin, h.CreateProduct),
		route(http.MethodPut, "/products/:id", admin, h.UpdateProduct),
		route(http.MethodDelete, "/products/:id", admin, h.DeleteProduct),

		route(http.MethodGet, "/users", admin, h.ListUsers),
		route(http.MethodGet, "/users/:id", admin, h.GetUser),
		route(http.MethodPost, "/users", admin, h.CreateUser),
		route(http.MethodPatch, "/users/:id", admin, h.UpdateUser),
		route(http.MethodDelete, "/users/:id", admin, h.DeleteUser),

		route(http.MethodPost, "/inquiries", h.SubmitInquiry),
		route(http.MethodGet, "/inquiries", admin, h.ListInquiries),
		route(http.MethodGet, "/inquiries/:id", admin, h.GetInquiry),
		route(http.MethodPatch, "/inquiries/:id", admin, h.UpdateInquiry),
	}

	for _, prefix := range []string{"", "/api"} {
		routes = append(routes,
			route(http.MethodGet, prefix+"/products", h.ListProducts),
			route(http.MethodGet, prefix+"/products/:id", h.GetProduct),
			route(http.MethodGet, prefix+"/products/category/:category", h.ProductsByCategory),
		)
	}

	if h.images != nil {
		routes = append(routes, route(http.MethodPost, "/products/images", admin, h.UploadImage))
	}
	return routes
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, messageResponse{Message: "E-commerce API is running"})
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) fail(c *gin.Context, err error) {
	middleware.RespondError(c, h.logger, err)
}

func (h *Handler) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, messageResponse{Message: msg})
}

// rejectBody answers a body that could not be read or decoded: 413 when it exceeded
// maxJSONBody, 400 with msg otherwise.
func (h *Handler) rejectBody(c *gin.Context, err error, msg string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, messageResponse{Message: "Request body too large"})
		return
	}
	h.badRequest(c, msg)
}

// readBody reads at most maxJSONBody bytes of the request body.
func readBody(c *gin.Context) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxJSONBody)
	return io.ReadAll(c.Request.Body)
}

// bindOptionalJSON decodes the body into dst and treats an empty body as {}.
func bindOptionalJSON(c *gin.Context, dst any) error {
	body, err := readBody(c)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	return json.Unmarshal(body, dst)
}

// rawList splits a JSON array into its elements. Anything that is not an array yields none.
func rawList(raw json.RawMessage) []json.RawMessage {
	items, _ := arrayField(raw)
	return items
}

// arrayField splits a decoded body field into its elements. An absent field is an empty
// list; a present value that is not an array (null included) reports false.
func arrayField(raw json.RawMessage) ([]json.RawMessage, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, true
	}
	if raw[0] != '[' {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}
