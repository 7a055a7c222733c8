// Package api is the REST client for the storefront backend. It trusts the
// server's payload shapes and converts every failure into the errs taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ismarliyorum/storekit/internal/errs"
	"github.com/ismarliyorum/storekit/internal/models"
)

// TokenSource supplies the auth token attached to every request. An empty
// token sends the request unauthenticated.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL string
	client  *http.Client
	tokens  TokenSource
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

type ListOrdersRequest struct {
	StoreID    string
	ListType   models.ListType
	TimeFilter models.TimeFilter
	Page       int
	Limit      int
}

// ListOrders fetches one page of a store's orders for a (listType,
// timeFilter) selection, along with the summary over the whole selection.
func (c *Client) ListOrders(ctx context.Context, req ListOrdersRequest) (*models.OrderFeedPage, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.Limit < 1 {
		req.Limit = 20
	}

	values := url.Values{}
	values.Set("listType", string(req.ListType))
	values.Set("timeFilter", string(req.TimeFilter))
	values.Set("page", strconv.Itoa(req.Page))
	values.Set("limit", strconv.Itoa(req.Limit))

	endpoint := fmt.Sprintf("/owner/stores/%s/orders?%s", url.PathEscape(req.StoreID), values.Encode())

	var page models.OrderFeedPage
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	if page.Items == nil {
		page.Items = []models.Order{}
	}
	return &page, nil
}

type redeemRequest struct {
	RedemptionCode string `json:"redemptionCode"`
	StoreID        string `json:"storeId"`
}

type redeemResponse struct {
	Success bool                        `json:"success"`
	Data    *models.ConfirmationPayload `json:"data"`
	Error   string                      `json:"error"`
	Msg     string                      `json:"msg"`
}

// RedeemByCode marks the order behind a redemption code as fulfilled.
// Codes are matched case-insensitively by convention, so manual entries are
// uppercased before they go on the wire.
func (c *Client) RedeemByCode(ctx context.Context, code, storeID string) (*models.ConfirmationPayload, error) {
	body := redeemRequest{
		RedemptionCode: strings.ToUpper(strings.TrimSpace(code)),
		StoreID:        storeID,
	}

	var resp redeemResponse
	if err := c.do(ctx, http.MethodPost, "/owner/redeem-order", body, &resp); err != nil {
		var tErr *errs.TransportError
		if errors.As(err, &tErr) {
			if tErr.Status == http.StatusNotFound || tErr.Status == http.StatusGone || looksUnredeemable(tErr.Message) {
				return nil, errs.ErrNotFoundOrExpired
			}
			// The request reached the server; whether the redemption was
			// applied is unknown on any other failure.
			tErr.Sent = true
		}
		return nil, err
	}
	if !resp.Success {
		if looksUnredeemable(resp.Error) || looksUnredeemable(resp.Msg) {
			return nil, errs.ErrNotFoundOrExpired
		}
		msg := resp.Msg
		if msg == "" {
			msg = resp.Error
		}
		return nil, &errs.TransportError{Op: "redeem order", Message: msg, Sent: true}
	}
	if resp.Data == nil {
		return nil, &errs.TransportError{Op: "redeem order", Message: "empty confirmation payload", Sent: true}
	}
	return resp.Data, nil
}

type detailResponse struct {
	Success bool                `json:"success"`
	Data    *models.OrderDetail `json:"data"`
	Msg     string              `json:"msg"`
}

func (c *Client) GetOrderDetail(ctx context.Context, storeID, orderID string) (*models.OrderDetail, error) {
	endpoint := fmt.Sprintf("/owner/stores/%s/orders/%s", url.PathEscape(storeID), url.PathEscape(orderID))

	var resp detailResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Data == nil {
		return nil, &errs.TransportError{Op: "get order detail", Message: resp.Msg}
	}
	return resp.Data, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string           `json:"token"`
	User  models.StaffUser `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	if err := c.do(ctx, http.MethodPost, "/store-auth/login", loginRequest{Email: email, Password: password}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Me returns the logged-in staff user with the stores they manage.
func (c *Client) Me(ctx context.Context) (*models.StaffUser, error) {
	var user models.StaffUser
	if err := c.do(ctx, http.MethodGet, "/store-auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

type errorBody struct {
	Msg   string `json:"msg"`
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	op := method + " " + endpoint

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &errs.TransportError{Op: op, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return &errs.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("x-auth-token", token)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &errs.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.TransportError{Op: op, Err: err, Sent: true}
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		msg := eb.Msg
		if msg == "" {
			msg = eb.Error
		}
		if msg == "" {
			msg = fmt.Sprintf("server error: %d", resp.StatusCode)
		}
		return &errs.TransportError{Op: op, Status: resp.StatusCode, Message: msg}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &errs.TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err), Sent: true}
	}
	return nil
}

func looksUnredeemable(msg string) bool {
	m := strings.ToLower(msg)
	if m == "" {
		return false
	}
	return strings.Contains(m, "expired") || strings.Contains(m, "not found") || strings.Contains(m, "already redeemed")
}
