package device

import (
	"fmt"
	"image"

	"github.com/jypelle/vekimatrix/internal/srv/config"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// NrzPanel drives a WS2812 matrix through the SPI MOSI line.
type NrzPanel struct {
	port          spi.PortCloser
	dev           *nrzled.Dev
	layout        PixelLayout
	maxBrightness int
	buf           []byte
}

func NewNrzPanel(panelParam config.PanelParam) (*NrzPanel, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("unable to init host: %w", err)
	}

	// An empty name opens the first available SPI port
	port, err := spireg.Open(panelParam.SpiPort)
	if err != nil {
		return nil, fmt.Errorf("unable to open spi port: %w", err)
	}

	layout := PixelLayout{
		Width:   panelParam.Width,
		Height:  panelParam.Height,
		Columns: panelParam.Columns,
		Zigzag:  panelParam.Zigzag,
	}

	dev, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: layout.Len(),
		Channels:  3,
		Freq:      physic.Frequency(panelParam.FrequencyKhz) * physic.KiloHertz,
	})
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("unable to open led strip: %w", err)
	}
	logrus.Debugf("Led strip %s opened on %s", dev, port)

	return &NrzPanel{
		port:          port,
		dev:           dev,
		layout:        layout,
		maxBrightness: panelParam.MaxBrightness,
	}, nil
}

func (p *NrzPanel) Draw(img *image.RGBA, level int) error {
	p.buf = p.layout.Pack(p.buf, img, Intensity(level, p.maxBrightness))
	_, err := p.dev.Write(p.buf)
	return err
}

func (p *NrzPanel) Halt() error {
	return p.dev.Halt()
}

func (p *NrzPanel) Close() error {
	if err := p.dev.Halt(); err != nil {
		logrus.Warnf("Unable to halt led strip: %v", err)
	}
	return p.port.Close()
}
