package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"filadex/config"
	"filadex/internal/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/golang-jwt/jwt/v5"
)

// Vendor task status codes; only finished tasks count toward the observed
// print count.
const taskStatusFinished = 4

const tokenRefreshMargin = 5 * time.Minute

type vendorLoginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

type vendorLoginResponse struct {
	AccessToken string `json:"accessToken"`
}

type vendorTask struct {
	ID     int64   `json:"id"`
	Title  string  `json:"title"`
	Status int     `json:"status"`
	Weight float64 `json:"weight"`
}

type vendorTaskList struct {
	Total int          `json:"total"`
	Hits  []vendorTask `json:"hits"`
}

// PrinterStatusService polls the vendor cloud for completed print tasks and,
// when an MQTT broker is configured, tracks live device state from its report
// topic. The aggregate is a one-way display signal: the store never acts on
// it and the integration failing never affects store correctness.
type PrinterStatusService struct {
	config     config.Config
	httpClient *http.Client
	log        logger.Logger

	mu                 sync.RWMutex
	accessToken        string
	tokenExpiry        time.Time
	observedPrintCount int
	lastPolledAt       time.Time
	deviceStatus       map[string]string

	mqttClient mqtt.Client
}

func NewPrinterStatusService(config config.Config) *PrinterStatusService {
	return &PrinterStatusService{
		config:       config,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		log:          logger.New("printerStatus"),
		deviceStatus: make(map[string]string),
	}
}

func (s *PrinterStatusService) Enabled() bool {
	return s.config.PrinterIntegrationEnabled()
}

// ObservedPrintCount returns the completed-task count from the last
// successful poll. Zero until the first poll lands.
func (s *PrinterStatusService) ObservedPrintCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.observedPrintCount
}

func (s *PrinterStatusService) LastPolledAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastPolledAt
}

// DeviceStatus returns the last reported state per device serial.
func (s *PrinterStatusService) DeviceStatus() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make(map[string]string, len(s.deviceStatus))
	for serial, state := range s.deviceStatus {
		statuses[serial] = state
	}
	return statuses
}

// PollTasks refreshes the vendor token when needed, fetches the task list and
// updates the observed print count.
func (s *PrinterStatusService) PollTasks(ctx context.Context) error {
	log := s.log.Function("PollTasks")

	if !s.Enabled() {
		return nil
	}

	if err := s.ensureToken(ctx); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1/user-service/my/tasks?limit=500", s.config.PrinterVendorBaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return log.Err("failed to build task request", err)
	}

	s.mu.RLock()
	req.Header.Set("Authorization", "Bearer "+s.accessToken)
	s.mu.RUnlock()

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return log.Err("task poll request failed", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return log.Error("task poll returned unexpected status", "status", resp.StatusCode)
	}

	var tasks vendorTaskList
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		return log.Err("failed to decode task list", err)
	}

	finished := 0
	for _, task := range tasks.Hits {
		if task.Status == taskStatusFinished {
			finished++
		}
	}

	s.mu.Lock()
	s.observedPrintCount = finished
	s.lastPolledAt = time.Now()
	s.mu.Unlock()

	log.Info("Polled vendor tasks", "total", tasks.Total, "finished", finished)
	return nil
}

func (s *PrinterStatusService) ensureToken(ctx context.Context) error {
	s.mu.RLock()
	token := s.accessToken
	expiry := s.tokenExpiry
	s.mu.RUnlock()

	if token != "" && time.Until(expiry) > tokenRefreshMargin {
		return nil
	}

	return s.login(ctx)
}

func (s *PrinterStatusService) login(ctx context.Context) error {
	log := s.log.Function("login")

	body, err := json.Marshal(vendorLoginRequest{
		Account:  s.config.PrinterVendorAccount,
		Password: s.config.PrinterVendorPassword,
	})
	if err != nil {
		return log.Err("failed to marshal login request", err)
	}

	url := fmt.Sprintf("%s/v1/user-service/user/login", s.config.PrinterVendorBaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return log.Err("failed to build login request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return log.Err("login request failed", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn("failed to close response body", "error", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return log.Error("login returned unexpected status", "status", resp.StatusCode)
	}

	var loginResp vendorLoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&loginResp); err != nil {
		return log.Err("failed to decode login response", err)
	}

	if loginResp.AccessToken == "" {
		return log.ErrMsg("login response missing access token")
	}

	expiry := s.tokenExpiryFromJWT(loginResp.AccessToken)

	s.mu.Lock()
	s.accessToken = loginResp.AccessToken
	s.tokenExpiry = expiry
	s.mu.Unlock()

	log.Info("Vendor login succeeded", "tokenExpiry", expiry)
	return nil
}

// tokenExpiryFromJWT reads the exp claim without verifying the signature; the
// token is the vendor's to verify, we only need to know when to refresh.
func (s *PrinterStatusService) tokenExpiryFromJWT(token string) time.Time {
	log := s.log.Function("tokenExpiryFromJWT")

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		log.Warn("access token is not a parseable JWT, assuming short lifetime", "error", err)
		return time.Now().Add(30 * time.Minute)
	}

	expiry, err := parsed.Claims.GetExpirationTime()
	if err != nil || expiry == nil {
		log.Warn("access token missing exp claim, assuming short lifetime")
		return time.Now().Add(30 * time.Minute)
	}

	return expiry.Time
}

// ConnectTelemetry subscribes to the device report topic when an MQTT broker
// is configured. Telemetry is best-effort: connection failures are logged and
// polling continues without it.
func (s *PrinterStatusService) ConnectTelemetry() error {
	log := s.log.Function("ConnectTelemetry")

	if s.config.PrinterMQTTBroker == "" {
		return nil
	}

	opts := mqtt.NewClientOptions().
		AddBroker(s.config.PrinterMQTTBroker).
		SetClientID("filadex-" + s.config.PrinterSerial).
		SetUsername(s.config.PrinterMQTTUsername).
		SetPassword(s.config.PrinterMQTTPassword).
		SetAutoReconnect(true).
		SetConnectTimeout(10 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return log.Err("failed to connect to MQTT broker", token.Error())
	}

	topic := "device/+/report"
	if token := client.Subscribe(topic, 0, s.handleReport); token.Wait() && token.Error() != nil {
		client.Disconnect(250)
		return log.Err("failed to subscribe to device reports", token.Error(), "topic", topic)
	}

	s.mqttClient = client
	log.Info("Subscribed to device telemetry", "topic", topic)
	return nil
}

func (s *PrinterStatusService) handleReport(_ mqtt.Client, msg mqtt.Message) {
	log := s.log.Function("handleReport")

	var report struct {
		Print struct {
			GcodeState string `json:"gcode_state"`
		} `json:"print"`
	}
	if err := json.Unmarshal(msg.Payload(), &report); err != nil {
		log.Warn("unparseable device report", "topic", msg.Topic(), "error", err)
		return
	}

	if report.Print.GcodeState == "" {
		return
	}

	s.mu.Lock()
	s.deviceStatus[msg.Topic()] = report.Print.GcodeState
	s.mu.Unlock()
}

func (s *PrinterStatusService) Close() error {
	if s.mqttClient != nil && s.mqttClient.IsConnected() {
		s.mqttClient.Disconnect(250)
	}
	return nil
}
