package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mrodrigc/campuseats-client/models"
)

// HTTPClientConfig configures the resty-backed [OrderAPI] implementation.
type HTTPClientConfig struct {
	BaseURL   string
	CSRFToken string
	Timeout   time.Duration
}

type httpOrderAPI struct {
	client   *resty.Client
	csrf     string
	reporter Reporter

	mu    sync.RWMutex
	token string
}

// NewHTTPOrderAPI builds the HTTP implementation of [OrderAPI]. reporter may
// be nil; when set it receives the raw outcome of every round trip.
func NewHTTPOrderAPI(cfg HTTPClientConfig, reporter Reporter) OrderAPI {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &httpOrderAPI{client: cli, csrf: cfg.CSRFToken, reporter: reporter}
}

func (h *httpOrderAPI) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

func (h *httpOrderAPI) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

func (h *httpOrderAPI) Login(ctx context.Context, creds models.Credentials) (models.Session, error) {
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(creds).
		Post("/api/auth/login")
	if err != nil {
		h.reportFailure()
		return models.Session{}, unavailable("login request", err)
	}
	h.reportSuccess()
	if err = mapHTTPError(resp); err != nil {
		return models.Session{}, err
	}

	token, err := parseBearerToken(resp.Header().Get("Authorization"))
	if err != nil {
		return models.Session{}, fmt.Errorf("login parse bearer token: %w", err)
	}
	userID, err := parseUserIDFromJWT(token)
	if err != nil {
		return models.Session{}, fmt.Errorf("login parse user id: %w", err)
	}

	h.SetToken(token)
	return models.Session{Token: token, UserID: userID, CreatedAt: time.Now()}, nil
}

func (h *httpOrderAPI) MyOrders(ctx context.Context) ([]models.Order, error) {
	return h.fetchOrders(ctx, "/api/comprador/mis-pedidos")
}

func (h *httpOrderAPI) StoreOrders(ctx context.Context) ([]models.Order, error) {
	return h.fetchOrders(ctx, "/api/vendedor/pedidos")
}

func (h *httpOrderAPI) fetchOrders(ctx context.Context, path string) ([]models.Order, error) {
	resp, err := h.authedRequest(ctx).Get(path)
	if err != nil {
		h.reportFailure()
		return nil, unavailable("fetch orders request", err)
	}
	h.reportSuccess()
	if err = mapHTTPError(resp); err != nil {
		return nil, err
	}

	var orders []models.Order
	if err = json.Unmarshal(resp.Body(), &orders); err != nil {
		return nil, fmt.Errorf("decode orders response: %w", err)
	}

	return orders, nil
}

func (h *httpOrderAPI) CreateOrder(ctx context.Context, req models.CreateOrderRequest) (models.Order, error) {
	resp, err := h.mutatingRequest(ctx).
		SetBody(req).
		Post("/api/pedidos")
	if err != nil {
		h.reportFailure()
		return models.Order{}, unavailable("create order request", err)
	}
	h.reportSuccess()
	if err = mapHTTPError(resp); err != nil {
		return models.Order{}, err
	}

	var order models.Order
	if err = json.Unmarshal(resp.Body(), &order); err != nil {
		return models.Order{}, fmt.Errorf("decode created order: %w", err)
	}

	return order, nil
}

func (h *httpOrderAPI) AdvanceOrder(ctx context.Context, orderID int64, action OrderAction) error {
	path := "/api/vendedor/pedidos/" + strconv.FormatInt(orderID, 10) + "/" + string(action)

	resp, err := h.mutatingRequest(ctx).Post(path)
	if err != nil {
		h.reportFailure()
		return unavailable("advance order request", err)
	}
	h.reportSuccess()

	return mapHTTPError(resp)
}

func (h *httpOrderAPI) Do(ctx context.Context, method, url string, payload json.RawMessage) error {
	req := h.mutatingRequest(ctx)
	if len(payload) > 0 {
		req.SetBody(payload)
	}

	resp, err := req.Execute(method, url)
	if err != nil {
		h.reportFailure()
		return unavailable("replay request", err)
	}
	h.reportSuccess()

	return mapHTTPError(resp)
}

func (h *httpOrderAPI) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

// mutatingRequest adds the CSRF header on top of the authenticated request.
// The original client reads the token from page metadata before every write.
func (h *httpOrderAPI) mutatingRequest(ctx context.Context) *resty.Request {
	req := h.authedRequest(ctx).SetHeader("Content-Type", "application/json")
	if h.csrf != "" {
		req.SetHeader("X-CSRF-Token", h.csrf)
	}
	return req
}

func (h *httpOrderAPI) reportSuccess() {
	if h.reporter != nil {
		h.reporter.ReportSuccess()
	}
}

func (h *httpOrderAPI) reportFailure() {
	if h.reporter != nil {
		h.reporter.ReportFailure()
	}
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}

func mapHTTPError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}

	if resp.StatusCode() == http.StatusUnauthorized {
		return ErrUnauthorized
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("http %d: %s", resp.StatusCode(), body)
}

func parseBearerToken(value string) (string, error) {
	parts := strings.Split(strings.TrimSpace(value), " ")
	if len(parts) != 2 || parts[1] == "" {
		return "", errors.New("invalid authorization header")
	}
	return parts[1], nil
}

func parseUserIDFromJWT(tokenString string) (int64, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, err
	}

	return strconv.ParseInt(sub, 10, 64)
}
