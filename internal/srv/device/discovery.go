package device

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/jypelle/vekimatrix/internal/srv/config"
	"github.com/jypelle/vekimatrix/internal/syncutil"
	"github.com/jypelle/vekimatrix/internal/version"
	"github.com/sirupsen/logrus"
)

const (
	DiscoveryServiceType = "_vekimatrix._udp"

	discoveryRetryInterval    = 30 * time.Second
	discoveryMaxRetryDuration = 5 * time.Minute
)

// Discovery advertises the control port with mDNS.
type Discovery struct {
	lock syncutil.Mutex

	controlParam config.ControlParam
	panelParam   config.PanelParam
	server       *zeroconf.Server
	cancel       context.CancelFunc
	stopped      bool
	done         chan struct{}
}

func NewDiscovery(controlParam config.ControlParam, panelParam config.PanelParam) *Discovery {
	return &Discovery{
		controlParam: controlParam,
		panelParam:   panelParam,
	}
}

func (d *Discovery) txtRecords() []string {
	return []string{
		"version=" + version.AppVersion.String(),
		"width=" + strconv.Itoa(d.panelParam.Width),
		"height=" + strconv.Itoa(d.panelParam.Height),
	}
}

// Start registers the service, retrying in background while the network is not ready.
func (d *Discovery) Start() {
	logrus.Infof("Start discovery device")

	err := d.register()
	if err == nil {
		return
	}
	logrus.Infof("mDNS registration failed, retrying every %s: %v", discoveryRetryInterval, err)

	ctx, cancel := context.WithTimeout(context.Background(), discoveryMaxRetryDuration)
	d.lock.Lock()
	d.cancel = cancel
	d.done = make(chan struct{})
	done := d.done
	d.lock.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(discoveryRetryInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := d.register(); err == nil {
					return
				}
			case <-ctx.Done():
				if errors.Is(ctx.Err(), context.DeadlineExceeded) {
					logrus.Warnf("mDNS registration given up, the panel won't be discoverable")
				}
				return
			}
		}
	}()
}

func (d *Discovery) register() error {
	ifaces, err := preferredInterfaces()
	if err != nil {
		return err
	}
	if len(ifaces) == 0 {
		return errors.New("no suitable network interface")
	}

	server, err := zeroconf.Register(
		d.controlParam.InstanceName,
		DiscoveryServiceType,
		"local.",
		d.controlParam.UdpPort,
		d.txtRecords(),
		ifaces,
	)
	if err != nil {
		return err
	}

	d.lock.Lock()
	defer d.lock.Unlock()
	if d.stopped {
		server.Shutdown()
		return errors.New("discovery stopped")
	}
	d.server = server
	logrus.Infof("Advertising %s as %s on port %d", DiscoveryServiceType, d.controlParam.InstanceName, d.controlParam.UdpPort)
	return nil
}

func (d *Discovery) Stop() {
	logrus.Infof("Stop discovery device")

	d.lock.Lock()
	d.stopped = true
	cancel, done := d.cancel, d.done
	server := d.server
	d.server = nil
	d.lock.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
	if server != nil {
		server.Shutdown()
	}
}
