package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/OldStager01/energy-intelligence/api"
	"github.com/OldStager01/energy-intelligence/internal/inference"
	"github.com/OldStager01/energy-intelligence/internal/orchestrator"
	"github.com/OldStager01/energy-intelligence/pkg/config"
	"github.com/OldStager01/energy-intelligence/pkg/models"
)

func loadConfig() *config.Config {
	cfg, err := config.Load("")
	Expect(err).NotTo(HaveOccurred())
	cfg.App.Mode = "test"
	cfg.Models.Dir = "../artifacts/models"
	cfg.Datasets.Dir = "../artifacts/data"
	Expect(cfg.Validate()).To(Succeed())
	return cfg
}

func newServer(o *orchestrator.Orchestrator, events <-chan *models.Event) *api.Server {
	return api.NewServer(config.APIConfig{}, "test", api.Dependencies{
		Gateway:  o.Gateway(),
		State:    o.State(),
		Gatherer: o.Registry(),
		Metrics:  o.Metrics(),
		Events:   events,
	})
}

func get(s *api.Server, path string, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

var _ = Describe("Server", func() {
	var (
		o      *orchestrator.Orchestrator
		server *api.Server
	)

	BeforeEach(func() {
		var err error
		o, err = orchestrator.New(context.Background(), loadConfig())
		Expect(err).NotTo(HaveOccurred())
		server = newServer(o, nil)
	})

	AfterEach(func() {
		Expect(server.Shutdown(context.Background())).To(Succeed())
	})

	Describe("GET /health", func() {
		It("returns exactly the ok status", func() {
			rec := get(server, "/health")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(Equal(`{"status":"ok"}`))
		})

		It("is open to any origin", func() {
			rec := get(server, "/health", "Origin", "https://grafana.example.net")
			Expect(rec.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://grafana.example.net"))
		})

		It("answers preflight requests for any method and header", func() {
			req := httptest.NewRequest(http.MethodOptions, "/realtime/vm", nil)
			req.Header.Set("Origin", "http://localhost:5173")
			req.Header.Set("Access-Control-Request-Method", "DELETE")
			req.Header.Set("Access-Control-Request-Headers", "X-Anything")
			rec := httptest.NewRecorder()
			server.Router().ServeHTTP(rec, req)

			Expect(rec.Code).To(Equal(http.StatusNoContent))
			Expect(rec.Header().Get("Access-Control-Allow-Methods")).To(Equal("DELETE"))
			Expect(rec.Header().Get("Access-Control-Allow-Headers")).To(Equal("X-Anything"))
		})
	})

	Describe("GET /health/ready", func() {
		It("summarizes the loaded artifacts", func() {
			rec := get(server, "/health/ready")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var body struct {
				Status string `json:"status"`
				State  struct {
					Models        map[string]interface{} `json:"models"`
					PowerReadings int                    `json:"power_readings"`
				} `json:"state"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Status).To(Equal("ready"))
			Expect(body.State.Models).To(HaveLen(4))
			Expect(body.State.PowerReadings).To(Equal(288))
		})
	})

	Describe("GET /realtime/power", func() {
		It("returns a non-negative reading and an anomaly flag", func() {
			rec := get(server, "/realtime/power")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var body map[string]interface{}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body).To(HaveLen(2))
			Expect(body["dc_power_w"]).To(BeNumerically(">=", 0))
			Expect(body["anomaly"]).To(BeAssignableToTypeOf(true))
		})
	})

	Describe("GET /realtime/predict", func() {
		It("returns the forecast for the last recorded readings", func() {
			rec := get(server, "/realtime/predict")
			Expect(rec.Code).To(Equal(http.StatusOK))

			var first, second models.ForecastResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &first)).To(Succeed())
			Expect(json.Unmarshal(get(server, "/realtime/predict").Body.Bytes(), &second)).To(Succeed())
			Expect(first.PredictedPowerW).To(BeNumerically(">", 0))
			Expect(second).To(Equal(first))
		})
	})

	Describe("GET /realtime/vm", func() {
		It("returns a consistent VM inference", func() {
			for i := 0; i < 20; i++ {
				rec := get(server, "/realtime/vm")
				Expect(rec.Code).To(Equal(http.StatusOK))

				var vm models.VMInferenceResponse
				Expect(json.Unmarshal(rec.Body.Bytes(), &vm)).To(Succeed())
				Expect(vm.CPUAvg).To(BeNumerically(">=", 0))
				Expect(vm.CPUAvg).To(BeNumerically("<=", 100))
				Expect(models.CoreCounts).To(ContainElement(vm.CoreCount))
				Expect(vm.EstimatedPowerW).To(BeNumerically("~", inference.EstimatePower(vm.CPUAvg, vm.CoreCount), 1e-9))
				Expect(vm.Recommendation).To(Equal(inference.Recommend(vm.CPUAvg)))
				Expect(vm.Cluster).To(BeNumerically(">=", 0))
			}
		})
	})

	Describe("GET /metrics", func() {
		It("counts inferences per endpoint", func() {
			get(server, "/realtime/power")
			get(server, "/realtime/vm")

			rec := get(server, "/metrics")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring(`energy_gateway_inferences_total{endpoint="power",outcome="ok"} 1`))
			Expect(rec.Body.String()).To(ContainSubstring(`energy_gateway_inferences_total{endpoint="vm",outcome="ok"} 1`))
		})
	})

	Describe("GET /swagger/doc.json", func() {
		It("serves the API description", func() {
			rec := get(server, "/swagger/doc.json")
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("/realtime/vm"))
		})
	})

	It("tags every response with a trace id", func() {
		rec := get(server, "/health/live")
		Expect(rec.Header().Get("X-Trace-ID")).NotTo(BeEmpty())
	})
})

var _ = Describe("Realtime stream", func() {
	It("pushes stream readings to WebSocket clients", func() {
		cfg := loadConfig()
		cfg.Stream.Enabled = true
		cfg.Stream.Interval = time.Hour

		o, err := orchestrator.New(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		server := newServer(o, o.SubscribeAllEvents())
		ts := httptest.NewServer(server.Router())
		DeferCleanup(func() {
			ts.Close()
			o.Stop()
			Expect(server.Shutdown(context.Background())).To(Succeed())
		})

		url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/realtime?topics=power_reading"
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		Expect(err).NotTo(HaveOccurred())
		defer conn.Close()
		Eventually(server.WebSocketHub().ClientCount).Should(Equal(1))

		o.Start()

		Expect(conn.SetReadDeadline(time.Now().Add(2 * time.Second))).To(Succeed())
		_, data, err := conn.ReadMessage()
		Expect(err).NotTo(HaveOccurred())

		var msg struct {
			Type string               `json:"type"`
			Data models.PowerResponse `json:"data"`
		}
		Expect(json.Unmarshal(data, &msg)).To(Succeed())
		Expect(msg.Type).To(Equal("power_reading"))
		Expect(msg.Data.DCPowerW).To(BeNumerically(">", 0))
	})
})
