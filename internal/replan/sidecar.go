package replan

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/Chabota512/forge-drift/internal/backend"
	"github.com/Chabota512/forge-drift/internal/constants"
	"github.com/Chabota512/forge-drift/internal/models"
)

// SidecarRequester asks the forge-backend sidecar for a reschedule. The
// sidecar holds the product's own planning model, so this is the default
// requester when the desktop shell is running.
type SidecarRequester struct {
	lockPath string
	endpoint backend.Endpoint
	client   *http.Client
}

// NewSidecarRequester creates a requester that discovers the sidecar through
// the lockfile at lockPath on each request. An empty lockPath means the
// default lockfile location.
func NewSidecarRequester(lockPath string) *SidecarRequester {
	return &SidecarRequester{
		lockPath: lockPath,
		client:   &http.Client{Timeout: constants.RequestTimeout},
	}
}

func (r *SidecarRequester) RequestReschedule(ctx context.Context, req Request) ([]models.TimeBlock, error) {
	if len(req.RemainingBlocks) == 0 {
		return nil, ErrNoRemainingBlocks
	}

	endpoint, err := r.resolveEndpoint()
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.BaseURL()+"/api/reschedule", bytes.NewBuffer(data))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(constants.BackendSecretHeader, endpoint.Secret)
	httpReq.Header.Set(constants.BackendRequestHeader, uuid.NewString())

	res, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("reschedule request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("re-planner returned status %d: %s", res.StatusCode, string(body))
	}

	var response Response
	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode re-planner response: %w", err)
	}
	if len(response.RescheduledBlocks) == 0 {
		return nil, fmt.Errorf("re-planner returned no blocks")
	}

	revised := annotateAdjustments(req.RemainingBlocks, response.RescheduledBlocks)
	if err := checkRevised(revised); err != nil {
		return nil, err
	}
	return revised, nil
}

// resolveEndpoint returns the pinned endpoint when one is set, otherwise
// runs lockfile discovery.
func (r *SidecarRequester) resolveEndpoint() (backend.Endpoint, error) {
	if r.endpoint.Port != "" {
		return r.endpoint, nil
	}

	lockPath := r.lockPath
	if lockPath == "" {
		var err error
		lockPath, err = backend.DefaultLockfilePath()
		if err != nil {
			return backend.Endpoint{}, err
		}
	}
	return backend.Discover(lockPath)
}
