package platform

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lapwatch/internal/core/presence"

	"github.com/godbus/dbus/v5"
)

type screenSaverService struct {
	name string
	path dbus.ObjectPath
}

var screenSaverServices = []screenSaverService{
	{name: "org.freedesktop.ScreenSaver", path: "/org/freedesktop/ScreenSaver"},
	{name: "org.gnome.ScreenSaver", path: "/org/gnome/ScreenSaver"},
}

// dbusLockSource follows screensaver ActiveChanged signals on the session bus.
// Desktop environments raise them when the session locks and unlocks.
type dbusLockSource struct{}

func newLockSource() lockSource {
	return dbusLockSource{}
}

// Probe checks that a screensaver service answers GetActive.
func (dbusLockSource) Probe(ctx context.Context) error {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: connect session bus: %v", presence.ErrUnsupported, err)
	}
	defer conn.Close()

	var lastErr error
	for _, service := range screenSaverServices {
		var active bool
		call := conn.Object(service.name, service.path).CallWithContext(ctx, service.name+".GetActive", 0)
		if err := call.Store(&active); err != nil {
			lastErr = classifyDBusError(err)
			if errors.Is(lastErr, presence.ErrPermissionDenied) {
				return lastErr
			}
			continue
		}
		return nil
	}
	return lastErr
}

// Watch subscribes to ActiveChanged signals until ctx is done.
func (dbusLockSource) Watch(ctx context.Context, onChange func(locked bool)) error {
	conn, err := dbus.ConnectSessionBus(dbus.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("%w: connect session bus: %v", presence.ErrUnsupported, err)
	}

	for _, service := range screenSaverServices {
		if err := conn.AddMatchSignal(
			dbus.WithMatchInterface(service.name),
			dbus.WithMatchMember("ActiveChanged"),
		); err != nil {
			_ = conn.Close()
			return fmt.Errorf("match %s signals: %w", service.name, classifyDBusError(err))
		}
	}

	signals := make(chan *dbus.Signal, 8)
	conn.Signal(signals)

	go func() {
		defer conn.Close()
		defer conn.RemoveSignal(signals)
		for {
			select {
			case <-ctx.Done():
				return
			case signal, ok := <-signals:
				if !ok {
					return
				}
				if locked, ok := parseActiveChanged(signal); ok {
					onChange(locked)
				}
			}
		}
	}()
	return nil
}

func parseActiveChanged(signal *dbus.Signal) (bool, bool) {
	if signal == nil || !strings.HasSuffix(signal.Name, ".ActiveChanged") || len(signal.Body) == 0 {
		return false, false
	}
	active, ok := signal.Body[0].(bool)
	return active, ok
}

func classifyDBusError(err error) error {
	name := dbusErrorName(err)
	switch name {
	case "org.freedesktop.DBus.Error.AccessDenied", "org.freedesktop.DBus.Error.AuthFailed":
		return fmt.Errorf("%w: %v", presence.ErrPermissionDenied, err)
	case "org.freedesktop.DBus.Error.ServiceUnknown",
		"org.freedesktop.DBus.Error.NameHasNoOwner",
		"org.freedesktop.DBus.Error.UnknownMethod",
		"org.freedesktop.DBus.Error.UnknownObject":
		return fmt.Errorf("%w: %v", presence.ErrUnsupported, err)
	}
	return err
}

func dbusErrorName(err error) string {
	var valueErr dbus.Error
	if errors.As(err, &valueErr) {
		return valueErr.Name
	}
	var pointerErr *dbus.Error
	if errors.As(err, &pointerErr) && pointerErr != nil {
		return pointerErr.Name
	}
	return ""
}
