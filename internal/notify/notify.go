package notify

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/godbus/dbus/v5"
	log "github.com/sirupsen/logrus"
)

const (
	busName    = "org.freedesktop.Notifications"
	objectPath = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyCall = busName + ".Notify"

	sendTimeout   = 3 * time.Second
	expireTimeout = int32(5000) // ms
)

// caller is the part of dbus.BusObject the notifier needs.
type caller interface {
	CallWithContext(ctx context.Context, method string, flags dbus.Flags, args ...interface{}) *dbus.Call
}

// Notifier posts desktop notifications on the session bus. Without a
// session bus, notifications are only logged.
type Notifier struct {
	appName string
	obj     caller

	// Each notification replaces the previous one. Notify runs from
	// concurrent tea.Cmds.
	lastID atomic.Uint32
}

// New creates a notifier. Notifications carry appName as their source.
func New(appName string) *Notifier {
	n := &Notifier{appName: appName}

	conn, err := dbus.SessionBus()
	if err != nil {
		log.WithField("component", "notify").WithError(err).Warn("no session bus, notifications will only be logged")
		return n
	}
	n.obj = conn.Object(busName, objectPath)
	return n
}

// Available reports whether desktop notifications can be shown.
func (n *Notifier) Available() bool {
	return n.obj != nil
}

// Notify shows a notification. It blocks for at most a few seconds.
func (n *Notifier) Notify(title, body string) error {
	logger := log.WithFields(log.Fields{"component": "notify", "title": title})
	logger.Info(body)

	if n.obj == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	call := n.obj.CallWithContext(ctx, notifyCall, 0,
		n.appName, n.lastID.Load(), "", title, body,
		[]string{}, map[string]dbus.Variant{}, expireTimeout)
	if call.Err != nil {
		logger.WithError(call.Err).Warn("notification failed")
		return call.Err
	}

	var id uint32
	if err := call.Store(&id); err == nil {
		n.lastID.Store(id)
	}
	return nil
}
