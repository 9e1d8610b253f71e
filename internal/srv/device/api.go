package device

import (
	"context"
	"crypto/subtle"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jypelle/vekimatrix/apimodel"
	"github.com/jypelle/vekimatrix/internal/srv/config"
	"github.com/jypelle/vekimatrix/internal/srv/control"
	"github.com/jypelle/vekimatrix/internal/srv/event"
	"github.com/jypelle/vekimatrix/internal/tool"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const maxTextBodySize = 4096

// WeatherRefresher fetches the weather on demand.
type WeatherRefresher interface {
	Refresh(ctx context.Context) (string, error)
}

type Api struct {
	eventChannel chan event.ApiEvent
	weather      WeatherRefresher

	router    *mux.Router
	apiRouter *mux.Router
	server    *http.Server

	config *config.ServerConfig
}

func NewApi(config *config.ServerConfig, weather WeatherRefresher) *Api {
	api := Api{
		config:       config,
		weather:      weather,
		eventChannel: make(chan event.ApiEvent),
	}

	api.router = mux.NewRouter().StrictSlash(false)

	// API Routes
	api.apiRouter = api.router.PathPrefix("/api").Subrouter()
	api.apiRouter.NotFoundHandler = http.HandlerFunc(ErrorNotFoundAction)
	api.apiRouter.MethodNotAllowedHandler = http.HandlerFunc(ErrorMethodNotAllowedAction)

	// Auth middleware
	api.apiRouter.Use(
		func(handler http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				defer func() {
					if rec := recover(); rec != nil {
						logrus.Warningf("recovered from panic : [%v] - stack trace : \n [%s]", rec, debug.Stack())
						strMessage := fmt.Sprintf("%v", rec)
						GlobalErrorAction(w, strMessage, http.StatusInternalServerError)
					}
				}()

				// Check API Key
				apiKey := r.Header.Get("x-api-key")
				if subtle.ConstantTimeCompare([]byte(apiKey), []byte(config.ServerParam.ApiParam.ApiKey)) != 1 {
					ErrorStatusAction(w, r, http.StatusForbidden)
					return
				}

				logrus.Debugf("PATH: %s %s", r.Host, r.URL.Path)

				handler.ServeHTTP(w, r)
			})
		})

	// Server check endpoint
	api.apiRouter.HandleFunc("/is_alive",
		func(w http.ResponseWriter, r *http.Request) {
			ErrorStatusAction(w, r, http.StatusOK)
		}).Methods("GET")

	api.apiRouter.HandleFunc("/state",
		func(w http.ResponseWriter, r *http.Request) {
			stateChannel := make(chan apimodel.State, 1)
			err := api.send(r.Context(), event.ApiEventStateData{State: stateChannel})
			if err != nil {
				GlobalErrorAction(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err = json.NewEncoder(w).Encode(<-stateChannel); err != nil {
				logrus.Warnf("Unable to encode state: %v", err)
			}
		}).Methods("GET")

	api.apiRouter.HandleFunc("/settings/{color}/{brightness}",
		func(w http.ResponseWriter, r *http.Request) {
			vars := mux.Vars(r)
			colorIndex, err := strconv.Atoi(vars["color"])
			if err != nil {
				apimodel.WrongParametersErrorMessage.SendError(w)
				return
			}
			brightnessLevel, err := strconv.Atoi(vars["brightness"])
			if err != nil {
				apimodel.WrongParametersErrorMessage.SendError(w)
				return
			}
			if err = control.ValidateSetting(colorIndex, brightnessLevel); err != nil {
				logrus.Warnf("Rejected api setting: %v", err)
				apimodel.InvalidSettingErrorMessage.SendError(w)
				return
			}

			api.reply(w, r, api.send(r.Context(), event.ApiEventSettingData{ColorIndex: colorIndex, BrightnessLevel: brightnessLevel}))
		}).Methods("POST")

	api.apiRouter.HandleFunc("/text",
		func(w http.ResponseWriter, r *http.Request) {
			text, err := readText(r)
			if err != nil {
				apimodel.WrongParametersErrorMessage.SendError(w)
				return
			}
			if text == "" {
				apimodel.EmptyTextErrorMessage.SendError(w)
				return
			}
			if len(text) > control.MaxTextLength {
				text = text[:control.MaxTextLength]
			}

			api.reply(w, r, api.send(r.Context(), event.ApiEventTextData{Text: text}))
		}).Methods("POST")

	api.apiRouter.HandleFunc("/display/switch",
		func(w http.ResponseWriter, r *http.Request) {
			api.reply(w, r, api.send(r.Context(), event.ApiEventDisplaySwitchData{}))
		}).Methods("POST")

	api.apiRouter.HandleFunc("/weather/refresh",
		func(w http.ResponseWriter, r *http.Request) {
			summary, err := api.weather.Refresh(r.Context())
			if errors.Is(err, ErrWeatherDisabled) {
				apimodel.WeatherDisabledErrorMessage.SendError(w)
				return
			}
			if err != nil {
				logrus.Warnf("Unable to refresh weather: %v", err)
				GlobalErrorAction(w, err.Error(), http.StatusBadGateway)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err = json.NewEncoder(w).Encode(apimodel.WeatherRefresh{Weather: summary}); err != nil {
				logrus.Warnf("Unable to encode weather: %v", err)
			}
		}).Methods("POST")

	// Tell the browser that it's OK for JS to communicate with the server
	headersOk := handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "x-api-key"})
	originsOk := handlers.AllowedOrigins([]string{"*"})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"})

	api.server = &http.Server{
		Addr:         ":" + strconv.FormatInt(config.ServerParam.ApiParam.SslPort, 10),
		Handler:      handlers.CompressHandler(handlers.CORS(originsOk, headersOk, methodsOk)(api.router)),
		ReadTimeout:  time.Second * 240,
		WriteTimeout: time.Second * 240,
		IdleTimeout:  time.Second * 240,
	}

	return &api
}

// send delivers data to the event loop and waits for its result.
func (d *Api) send(ctx context.Context, data interface{}) error {
	result := make(chan error, 1)
	select {
	case d.eventChannel <- event.ApiEvent{Result: result, Data: data}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Api) reply(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		ErrorStatusAction(w, r, http.StatusOK)
	} else {
		GlobalErrorAction(w, err.Error(), http.StatusForbidden)
	}
}

// readText accepts a raw body or a JSON apimodel.TextRequest.
func readText(r *http.Request) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxTextBodySize))
	if err != nil {
		return "", err
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var request apimodel.TextRequest
		if err = json.Unmarshal(body, &request); err != nil {
			return "", err
		}
		return request.Text, nil
	}
	return string(body), nil
}

func (d *Api) Handler() http.Handler {
	return d.server.Handler
}

func (d *Api) Start() {
	logrus.Infof("Start api device")

	fs := d.config.Fs

	existServerCert, err := tool.IsFileExists(fs, d.config.GetCompleteCertFilename())
	if err != nil {
		logrus.Fatalf("Unable to access %s: %v\n", d.config.GetCompleteCertFilename(), err)
	}

	existServerKey, err := tool.IsFileExists(fs, d.config.GetCompleteKeyFilename())
	if err != nil {
		logrus.Fatalf("Unable to access %s: %v\n", d.config.GetCompleteKeyFilename(), err)
	}

	if !existServerCert || !existServerKey {
		logrus.Info("Missing cert and key files, trying to generate them...")
		err = tool.GenerateTlsCertificate(
			fs,
			"jypelle",
			"Vekimatrix Server",
			d.config.GetCompleteKeyFilename(),
			d.config.GetCompleteCertFilename(),
			[]string{"localhost", d.config.ControlParam.InstanceName + ".local"})
		if err != nil {
			logrus.Fatalf("Unable to generate cert and key files : %v\n", err)
		}
		logrus.Info("Self-signed cert and key files generated")
	}

	certificate, err := loadCertificate(fs, d.config.GetCompleteCertFilename(), d.config.GetCompleteKeyFilename())
	if err != nil {
		logrus.Fatalf("Unable to load cert and key files: %v\n", err)
	}
	d.server.TLSConfig = &tls.Config{Certificates: []tls.Certificate{certificate}}

	// Launch https server
	go func() {
		err := d.server.ListenAndServeTLS("", "")
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Error(err)
		}
	}()
}

func loadCertificate(fs afero.Fs, certFilename, keyFilename string) (tls.Certificate, error) {
	certPem, err := afero.ReadFile(fs, certFilename)
	if err != nil {
		return tls.Certificate{}, err
	}
	keyPem, err := afero.ReadFile(fs, keyFilename)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.X509KeyPair(certPem, keyPem)
}

func (d *Api) StopSendingEvent() {
	logrus.Infof("Stop api device")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.server.Shutdown(ctx); err != nil {
		logrus.Warnf("Unable to shutdown api server: %v", err)
	}
}

func (d *Api) EventChannel() chan event.ApiEvent {
	return d.eventChannel
}

func ErrorNotFoundAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusNotFound)
}

func ErrorMethodNotAllowedAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusMethodNotAllowed)
}

func ErrorStatusAction(w http.ResponseWriter, r *http.Request, status int) {
	ErrorMessageAction(w, "", status)
}

func GlobalErrorAction(w http.ResponseWriter, message string, status int) {
	ErrorMessageAction(w, message, status)
}

func ErrorMessageAction(w http.ResponseWriter, title string, status int) {
	apimodel.NewErrorMessage(status, title).SendError(w)
}
