// Package redeem converts a scanned or typed redemption code plus the
// previously selected active store into exactly one redemption request, and
// hands back a normalized confirmation payload.
package redeem

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/ismarliyorum/storekit/internal/audit"
	"github.com/ismarliyorum/storekit/internal/errs"
	"github.com/ismarliyorum/storekit/internal/models"
)

type State string

const (
	StateIdle               State = "idle"
	StateAwaitingPermission State = "awaiting_permission"
	StateScanning           State = "scanning"
	StateCodeCaptured       State = "code_captured"
	StateSubmitting         State = "submitting"
	StateSucceeded          State = "succeeded"
	StateFailed             State = "failed"
)

// ErrPermissionDenied signals that the OS denied camera access; the flow
// stays idle and the caller should point the user at the settings screen.
var ErrPermissionDenied = errors.New("camera permission denied")

// ScanSession is one open camera session, producing decoded codes until
// closed by the caller.
type ScanSession interface {
	Codes() <-chan string
	Close() error
}

type CameraCapability interface {
	RequestPermission(ctx context.Context) (bool, error)
	OpenScanner(ctx context.Context) (ScanSession, error)
}

type Service interface {
	RedeemByCode(ctx context.Context, code, storeID string) (*models.ConfirmationPayload, error)
}

// SessionReader is the read-only view of the persisted session the
// redemption flow is allowed to see. It can never write the selection.
type SessionReader interface {
	LastSelectedStore() string
}

type Controller struct {
	svc     Service
	session SessionReader
	camera  CameraCapability
	events  audit.Recorder

	mu      sync.Mutex
	state   State
	code    string
	result  *models.ConfirmationPayload
	failure error
	scan    ScanSession
}

func NewController(svc Service, session SessionReader, camera CameraCapability, events audit.Recorder) *Controller {
	if events == nil {
		events = audit.NopRecorder{}
	}
	return &Controller{
		svc:     svc,
		session: session,
		camera:  camera,
		events:  events,
		state:   StateIdle,
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) CapturedCode() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

// Result returns the confirmation payload after a successful submit.
func (c *Controller) Result() *models.ConfirmationPayload {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// FailureReason returns the terminal error after a failed submit.
func (c *Controller) FailureReason() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failure
}

// RequestCameraAccess asks for the camera permission and opens a scan
// session on grant. On denial the controller stays idle and the caller gets
// ErrPermissionDenied to surface.
func (c *Controller) RequestCameraAccess(ctx context.Context) (ScanSession, error) {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return nil, fmt.Errorf("cannot open scanner from state %q", c.state)
	}
	c.state = StateAwaitingPermission
	c.mu.Unlock()

	granted, err := c.camera.RequestPermission(ctx)
	if err != nil {
		c.setState(StateIdle)
		return nil, fmt.Errorf("request camera permission: %w", err)
	}
	if !granted {
		c.setState(StateIdle)
		return nil, ErrPermissionDenied
	}

	scan, err := c.camera.OpenScanner(ctx)
	if err != nil {
		c.setState(StateIdle)
		return nil, fmt.Errorf("open scanner: %w", err)
	}

	c.mu.Lock()
	c.state = StateScanning
	c.scan = scan
	c.mu.Unlock()
	return scan, nil
}

// OnCodeCaptured records a decoded code and closes the scan session. The
// code is not submitted; the caller confirms first.
func (c *Controller) OnCodeCaptured(code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateScanning {
		return
	}
	c.code = code
	c.state = StateCodeCaptured
	if c.scan != nil {
		_ = c.scan.Close()
		c.scan = nil
	}
}

// Submit sends one redemption request for the code against the last
// selected store. Empty codes are rejected locally; a missing store
// selection is a precondition failure — neither issues a network call.
func (c *Controller) Submit(ctx context.Context, code string) (*models.ConfirmationPayload, error) {
	if strings.TrimSpace(code) == "" {
		return nil, errs.ErrEmptyCode
	}

	storeID := c.session.LastSelectedStore()
	if storeID == "" {
		return nil, errs.ErrNoStoreSelected
	}

	c.mu.Lock()
	if c.state == StateSubmitting {
		c.mu.Unlock()
		return nil, fmt.Errorf("a submission is already in flight")
	}
	c.state = StateSubmitting
	c.mu.Unlock()

	c.events.Record(audit.Event{
		Kind:    audit.EventRedeemTry,
		StoreID: storeID,
	})

	payload, err := c.svc.RedeemByCode(ctx, code, storeID)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = StateFailed
		c.failure = err
		c.result = nil
		c.events.Record(audit.Event{
			Kind:    audit.EventRedeemResult,
			StoreID: storeID,
			Message: "failed: " + errs.UserMessage(err),
		})
		return nil, err
	}

	c.state = StateSucceeded
	c.result = payload
	c.failure = nil
	c.events.Record(audit.Event{
		Kind:    audit.EventRedeemResult,
		StoreID: storeID,
		Message: "succeeded",
	})
	return payload, nil
}

// Reset returns to idle from any state, clearing the captured code and any
// terminal result.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scan != nil {
		_ = c.scan.Close()
		c.scan = nil
	}
	c.state = StateIdle
	c.code = ""
	c.result = nil
	c.failure = nil
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
