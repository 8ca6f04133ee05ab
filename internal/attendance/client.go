// Package attendance calls the external clock-in service. The service is
// advisory: when it is down or slow the dispatcher must keep working, so
// every failure path reports the driver as clocked in (fail-open).
package attendance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// EnforcementMode controls what a "not clocked in" answer does.
type EnforcementMode string

const (
	ModeOff     EnforcementMode = "off"     // never ask
	ModeWarn    EnforcementMode = "warn"    // ask, log, never block
	ModeEnforce EnforcementMode = "enforce" // ask, block when definitively not clocked in
)

// ParseMode maps a config string to an EnforcementMode, defaulting to off.
func ParseMode(s string) EnforcementMode {
	switch EnforcementMode(s) {
	case ModeWarn, ModeEnforce:
		return EnforcementMode(s)
	}
	return ModeOff
}

// Status is the attendance service's answer for one driver.
type Status struct {
	IsClockedIn bool   `json:"isClockedIn"`
	ClockInTime string `json:"clockInTime"`
}

type Client struct {
	BaseURL string
	Mode    EnforcementMode
	HTTP    *http.Client
}

func NewClient(baseURL string, mode EnforcementMode) *Client {
	return &Client{
		BaseURL: baseURL,
		Mode:    mode,
		HTTP:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Check asks whether the driver is clocked in. Any transport or decode
// failure returns a clocked-in status so enforcement fails open.
func (c *Client) Check(userID uint, username string) Status {
	if c.Mode == ModeOff || c.BaseURL == "" {
		return Status{IsClockedIn: true}
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"userId":   userID,
		"username": username,
	})
	resp, err := c.HTTP.Post(c.BaseURL+"/api/attendance/status", "application/json", bytes.NewReader(payload))
	if err != nil {
		logrus.WithError(err).Warn("attendance: service unreachable, failing open")
		return Status{IsClockedIn: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logrus.WithField("status", resp.StatusCode).Warn("attendance: non-200, failing open")
		return Status{IsClockedIn: true}
	}

	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		logrus.WithError(err).Warn("attendance: bad response body, failing open")
		return Status{IsClockedIn: true}
	}
	return st
}

// Gate returns an error only when the mode is enforce and the service
// definitively reported the driver as not clocked in.
func (c *Client) Gate(userID uint, username string) error {
	if c.Mode == ModeOff {
		return nil
	}
	st := c.Check(userID, username)
	if st.IsClockedIn {
		return nil
	}
	if c.Mode == ModeWarn {
		logrus.WithFields(logrus.Fields{"user_id": userID, "username": username}).
			Warn("attendance: driver not clocked in")
		return nil
	}
	return fmt.Errorf("driver %s is not clocked in", username)
}
