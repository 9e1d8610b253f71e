package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const paramFilename = "param.yaml"
const certFilename = "cert.pem"
const keyFilename = "key.pem"

type ServerConfig struct {
	Fs             afero.Fs
	ConfigDir      string
	DebugMode      bool
	SimulationMode bool
	TerminalMode   bool

	*ServerParam
	*ServerState
}

func NewServerConfig(fs afero.Fs, configDir string, debugMode bool, simulationMode bool, terminalMode bool) (*ServerConfig, error) {
	serverConfig := &ServerConfig{
		Fs:             fs,
		ConfigDir:      configDir,
		DebugMode:      debugMode,
		SimulationMode: simulationMode,
		TerminalMode:   terminalMode,
	}

	// Check Configuration folder
	_, err := fs.Stat(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.Printf("Creation of config folder: %s", configDir)
			err = fs.MkdirAll(configDir, 0770)
			if err != nil {
				return nil, fmt.Errorf("unable to create config folder: %w", err)
			}
		} else {
			return nil, fmt.Errorf("unable to access config folder %s: %w", configDir, err)
		}
	}

	// Defaults first, so that a partial param file keeps the missing values
	serverConfig.ServerParam = &ServerParam{}
	err = yaml.Unmarshal(ParamDefaultFile, serverConfig.ServerParam)
	if err != nil {
		return nil, fmt.Errorf("unable to interpret default param file: %w", err)
	}

	// Open param file
	rawConfig, err := afero.ReadFile(fs, serverConfig.GetCompleteParamFilename())
	if err == nil {
		err = yaml.Unmarshal(rawConfig, serverConfig.ServerParam)
		if err != nil {
			return nil, fmt.Errorf("unable to interpret param file: %w", err)
		}
	} else if os.IsNotExist(err) {
		// Create default param file
		logrus.Infof("Create default param file")
		err = serverConfig.SaveParam()
		if err != nil {
			return nil, err
		}
	} else {
		return nil, fmt.Errorf("unable to read param file: %w", err)
	}

	err = serverConfig.ServerParam.Validate()
	if err != nil {
		return nil, err
	}

	serverConfig.ServerState = NewServerState(serverConfig.DisplayParam.DefaultColor, serverConfig.DisplayParam.DefaultBrightness)

	return serverConfig, nil
}

func (sc *ServerConfig) GetCompleteParamFilename() string {
	return filepath.Join(sc.ConfigDir, paramFilename)
}

func (sc *ServerConfig) GetCompleteCertFilename() string {
	return filepath.Join(sc.ConfigDir, certFilename)
}

func (sc *ServerConfig) GetCompleteKeyFilename() string {
	return filepath.Join(sc.ConfigDir, keyFilename)
}

func (sc *ServerConfig) SaveParam() error {
	logrus.Debugf("Save param file: %s", sc.GetCompleteParamFilename())
	rawConfig, err := yaml.Marshal(*sc.ServerParam)
	if err != nil {
		return fmt.Errorf("unable to serialize param file: %w", err)
	}
	err = afero.WriteFile(sc.Fs, sc.GetCompleteParamFilename(), rawConfig, 0660)
	if err != nil {
		return fmt.Errorf("unable to save param file: %w", err)
	}
	return nil
}
