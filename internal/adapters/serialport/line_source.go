package serialport

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"sensorline/internal/ports"
)

// Config captures the runtime details required to open the serial device.
type Config struct {
	Address     string        `yaml:"address"`
	SymbolRate  int           `yaml:"symbol_rate"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

func (c *Config) ApplyDefaults() {
	if c.SymbolRate <= 0 {
		c.SymbolRate = 115200
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = time.Second
	}
}

func (c *Config) Validate() error {
	if c.Address == "" {
		return errors.New("address is required")
	}
	return nil
}

// openPort is swapped out in tests so framing can be exercised without
// hardware.
var openPort = func(address string, mode *serial.Mode) (serial.Port, error) {
	return serial.Open(address, mode)
}

// LineSource frames bytes read from a serial device (8 data bits, no
// parity, 1 stop bit) into text lines. The bounded read timeout makes
// ReadLine return ports.ErrReadTimeout instead of blocking indefinitely,
// so the controller can observe stop signals between lines.
type LineSource struct {
	cfg Config

	mu      sync.Mutex
	port    serial.Port
	pending bytes.Buffer
	chunk   []byte
}

func NewLineSource(cfg Config) (*LineSource, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &LineSource{
		cfg:   cfg,
		chunk: make([]byte, 512),
	}, nil
}

func (s *LineSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port != nil {
		return fmt.Errorf("serial source already open")
	}

	mode := &serial.Mode{
		BaudRate: s.cfg.SymbolRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := openPort(s.cfg.Address, mode)
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", s.cfg.Address, err)
	}
	if err := port.SetReadTimeout(s.cfg.ReadTimeout); err != nil {
		port.Close()
		return fmt.Errorf("set read timeout on %s: %w", s.cfg.Address, err)
	}
	s.port = port
	return nil
}

// ReadLine returns the next complete line, stripped of its terminator.
// It returns ports.ErrReadTimeout when no full line arrived within the
// read timeout; partial input is retained for the next call.
func (s *LineSource) ReadLine() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return "", fmt.Errorf("serial source not open")
	}

	if line, ok := s.takeLine(); ok {
		return line, nil
	}

	n, err := s.port.Read(s.chunk)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.cfg.Address, err)
	}
	if n == 0 {
		// the port-level read timeout elapsed with no bytes
		return "", ports.ErrReadTimeout
	}
	s.pending.Write(s.chunk[:n])

	if line, ok := s.takeLine(); ok {
		return line, nil
	}
	return "", ports.ErrReadTimeout
}

func (s *LineSource) takeLine() (string, bool) {
	buf := s.pending.Bytes()
	idx := bytes.IndexByte(buf, '\n')
	if idx < 0 {
		return "", false
	}
	line := string(buf[:idx])
	s.pending.Next(idx + 1)
	return strings.TrimSuffix(line, "\r"), true
}

func (s *LineSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	return err
}

var _ ports.LineSource = (*LineSource)(nil)
