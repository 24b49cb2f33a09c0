// Package support holds the godog step definitions driving the scanner
// service with synthetic camera feeds.
package support

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/scanline/internal/camera"
	"github.com/MeKo-Tech/scanline/internal/scanner"
	"github.com/MeKo-Tech/scanline/internal/testutil"
)

// TestContext carries the scanner under test across steps of one scenario.
type TestContext struct {
	svc     *scanner.Service
	results *scanner.Results
	sub     *scanner.Subscription
}

// NewTestContext creates an empty scenario context.
func NewTestContext() *TestContext {
	return &TestContext{}
}

// Cleanup stops any session the scenario left running.
func (tc *TestContext) Cleanup() error {
	if tc.svc != nil {
		tc.svc.StopScanning()
	}
	return nil
}

// RegisterSteps wires the step definitions into the scenario.
func (tc *TestContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a camera feed showing a QR code with value "([^"]*)"$`, tc.aCameraFeedShowingQR)
	sc.Step(`^no decoder backend is available$`, tc.noDecoderBackend)
	sc.Step(`^I start scanning$`, tc.iStartScanning)
	sc.Step(`^I stop scanning$`, tc.iStopScanning)
	sc.Step(`^the result stream delivers "([^"]*)"$`, tc.theResultStreamDelivers)
	sc.Step(`^the result stream terminates with an unsupported error$`, tc.theStreamIsUnsupported)
	sc.Step(`^the scanner is active$`, tc.theScannerIsActive)
	sc.Step(`^the scanner is not active$`, tc.theScannerIsNotActive)
	sc.Step(`^the formatted supported formats contain "([^"]*)"$`, tc.formattedFormatsContain)
}

func (tc *TestContext) newService(device camera.Device, backend string) {
	cfg := scanner.DefaultConfig()
	cfg.Device = device
	cfg.Constraints.FrameRate = 100
	cfg.Detect.Backend = backend
	tc.svc = scanner.New(cfg)
}

func (tc *TestContext) aCameraFeedShowingQR(value string) error {
	img, err := testutil.NewQRFrame(value, 320, 240)
	if err != nil {
		return err
	}
	data, err := testutil.EncodeJPEG(img)
	if err != nil {
		return err
	}
	device := camera.NewPlayback([]camera.Frame{{Data: data}}, true)
	tc.newService(device, "")
	return nil
}

func (tc *TestContext) noDecoderBackend() error {
	device := camera.NewPlayback([]camera.Frame{}, true)
	tc.newService(device, "backend-that-does-not-exist")
	return nil
}

func (tc *TestContext) iStartScanning() error {
	if tc.svc == nil {
		return errors.New("no scanner service configured")
	}
	tc.results = tc.svc.StartScanning(context.Background(), nil)
	tc.sub = tc.results.Subscribe()
	return nil
}

func (tc *TestContext) iStopScanning() error {
	tc.svc.StopScanning()
	return nil
}

func (tc *TestContext) theResultStreamDelivers(expected string) error {
	select {
	case got, ok := <-tc.sub.Values():
		if !ok {
			return fmt.Errorf("stream ended before delivering a value: %v", tc.sub.Err())
		}
		if got != expected {
			return fmt.Errorf("expected %q, got %q", expected, got)
		}
		return nil
	case <-time.After(5 * time.Second):
		return errors.New("timed out waiting for a decoded value")
	}
}

func (tc *TestContext) theStreamIsUnsupported() error {
	if !tc.results.Done() {
		return errors.New("stream is still live")
	}
	if !errors.Is(tc.results.Err(), scanner.ErrUnsupported) {
		return fmt.Errorf("expected unsupported error, got %v", tc.results.Err())
	}
	return nil
}

func (tc *TestContext) theScannerIsActive() error {
	if !tc.svc.Active() {
		return errors.New("scanner is not active")
	}
	return nil
}

func (tc *TestContext) theScannerIsNotActive() error {
	if tc.svc.Active() {
		return errors.New("scanner is still active")
	}
	return nil
}

func (tc *TestContext) formattedFormatsContain(fragment string) error {
	display := tc.svc.FormattedSupportedFormats(context.Background())
	if !strings.Contains(display, fragment) {
		return fmt.Errorf("%q not found in %q", fragment, display)
	}
	return nil
}
