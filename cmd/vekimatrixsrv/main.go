package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/jypelle/vekimatrix/internal/srv"
	"github.com/jypelle/vekimatrix/internal/srv/config"
	"github.com/jypelle/vekimatrix/internal/srv/control"
	"github.com/jypelle/vekimatrix/internal/version"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"
)

const configSuffix = "vekimatrix"

func main() {

	// Logger
	logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true})

	mainCommand := filepath.Base(os.Args[0])

	// region Flags and Commands definition

	// Debug Mode
	debugMode := flag.Bool("d", false, "Enable debug mode")

	// Simulation Mode
	simulationMode := flag.Bool("s", false, "Enable simulation mode")

	// Terminal Mode
	terminalMode := flag.Bool("t", false, "Preview the panel in the terminal")

	// Log file
	logFile := flag.String("l", "", "Also write logs to this file, rotated")

	// User config dir
	defaultConfigDir := "./." + configSuffix
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		defaultConfigDir = filepath.Join(userConfigDir, configSuffix)
	}
	configDir := flag.String("c", defaultConfigDir, "Location of vekimatrix config folder")

	// Usage
	flag.Usage = func() {
		fmt.Printf("\nUsage: %s [OPTIONS] [COMMAND]\n", mainCommand)
		fmt.Printf("\nA LED matrix clock with scrolling messages\n")
		fmt.Printf("\nOptions:\n")
		flag.PrintDefaults()
		fmt.Printf("\nCommands:\n")
		fmt.Printf("  run       Run server\n")
		fmt.Printf("  send      Send a control datagram to a running server\n")
		fmt.Printf("  version   Show the version number\n")
		fmt.Printf("\nRun '%s COMMAND --help' for more information on a command.\n", mainCommand)
	}

	// run command
	runCmd := flag.NewFlagSet("run", flag.ExitOnError)

	runCmd.Usage = func() {
		fmt.Printf("\nUsage: %s run\n", mainCommand)
		fmt.Printf("\nRun the server\n")
	}

	// send command
	sendCmd := flag.NewFlagSet("send", flag.ExitOnError)
	sendAddress := sendCmd.String("a", "localhost:1234", "Server address")
	sendText := sendCmd.Bool("text", false, "Send VALUE as an override text")

	sendCmd.Usage = func() {
		fmt.Printf("\nUsage: %s send [OPTIONS] VALUE\n", mainCommand)
		fmt.Printf("\nSend a setting (two digits: color then brightness, e.g. 13) or a text\n")
		fmt.Printf("\nOptions:\n")
		sendCmd.PrintDefaults()
	}

	// version command
	versionCmd := flag.NewFlagSet("version", flag.ExitOnError)

	versionCmd.Usage = func() {
		fmt.Printf("\nUsage: %s version\n", mainCommand)
		fmt.Printf("\nShow the version information\n")
	}

	// endregion

	// region Flags and Commands Parsing
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}

	switch flag.Arg(0) {
	case "run":
		runCmd.Parse(flag.Args()[1:])
		if runCmd.NArg() > 0 {
			fmt.Printf("\n\"%s %s\" accepts no arguments\n", mainCommand, flag.Arg(0))
			runCmd.Usage()
			os.Exit(1)
		}
	case "send":
		sendCmd.Parse(flag.Args()[1:])
		if sendCmd.NArg() != 1 {
			fmt.Printf("\n\"%s %s\" requires exactly 1 argument\n", mainCommand, flag.Arg(0))
			sendCmd.Usage()
			os.Exit(1)
		}
	case "version":
		versionCmd.Parse(flag.Args()[1:])
		if versionCmd.NArg() > 0 {
			fmt.Printf("\n\"%s %s\" accepts no arguments\n", mainCommand, flag.Arg(0))
			versionCmd.Usage()
			os.Exit(1)
		}
	default:
		fmt.Printf("\n%s is not a vekimatrix command\n", flag.Args()[0])
		flag.Usage()
		os.Exit(1)
	}
	// endregion

	logrus.SetOutput(logOutput(*logFile, *terminalMode && runCmd.Parsed()))

	if *debugMode {
		logrus.SetLevel(logrus.DebugLevel)
		logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339Nano})
		logrus.Printf("Debug mode activated")
	}

	switch {
	case versionCmd.Parsed():
		fmt.Printf("Version %s\n", version.AppVersion.String())
	case sendCmd.Parsed():
		if err := send(*sendAddress, sendCmd.Arg(0), *sendText); err != nil {
			logrus.Fatalf("Unable to send: %v", err)
		}
	case runCmd.Parsed():
		serverConfig, err := config.NewServerConfig(afero.NewOsFs(), *configDir, *debugMode, *simulationMode, *terminalMode)
		if err != nil {
			logrus.Fatalf("Unable to load configuration: %v", err)
		}

		// Create vekimatrix server
		serverApp, err := srv.NewServerApp(serverConfig, clockwork.NewRealClock())
		if err != nil {
			logrus.Fatalf("Unable to create server: %v", err)
		}

		// Listen stop signal
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGABRT, syscall.SIGHUP, syscall.SIGUSR1)

		// Start vekimatrix server
		serverApp.Start()

		sig := <-ch
		logrus.Infof("Received signal: %v", sig)
		serverApp.Stop(sig == syscall.SIGUSR1)
		os.Exit(0)
	}

}

// send writes one control datagram to address.
func send(address string, value string, text bool) error {
	var payload []byte
	var err error
	if text {
		payload, err = control.EncodeText(value)
	} else {
		if len(value) != control.PrefixLength {
			return fmt.Errorf("setting must be 2 digits, got %q", value)
		}
		var cmd control.Command
		cmd, err = control.Decode([]byte(value))
		if err == nil {
			payload, err = control.EncodeSetting(cmd.ColorIndex, cmd.BrightnessLevel)
		}
	}
	if err != nil {
		return err
	}

	conn, err := net.Dial("udp", address)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Write(payload)
	if err == nil {
		logrus.Infof("Sent %q to %s", payload, address)
	}
	return err
}

// logOutput keeps stderr free while the terminal preview owns the screen.
func logOutput(logFile string, terminalMode bool) io.Writer {
	var writers []io.Writer
	if !terminalMode {
		writers = append(writers, os.Stderr)
	}
	if logFile != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    1,
			MaxBackups: 2,
		})
	}
	switch len(writers) {
	case 0:
		return io.Discard
	case 1:
		return writers[0]
	}
	return io.MultiWriter(writers...)
}
