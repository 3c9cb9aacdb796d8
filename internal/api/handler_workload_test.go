package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"

	"reconciler/internal/api"
	"reconciler/internal/backend/backendtest"
	"reconciler/internal/service"
	"reconciler/internal/workload"
)

const testNetwork = "bridge"

func newTestRouter(f *backendtest.Fake) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return api.NewRouter(service.NewService(f, testNetwork, logger))
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func registerWorkload(t *testing.T, router *gin.Engine, identity, mode string) {
	t.Helper()

	rr := doJSON(t, router, http.MethodPost, "/api/v1/workloads",
		map[string]string{"workload_id": identity, "mode": mode})
	if rr.Code != http.StatusCreated {
		t.Fatalf("Register returned %d: %s", rr.Code, rr.Body.String())
	}
}

func TestRegisterWorkload(t *testing.T) {
	router := newTestRouter(backendtest.New())

	registerWorkload(t, router, "abc", "docker")

	// Duplicate registration conflicts.
	rr := doJSON(t, router, http.MethodPost, "/api/v1/workloads",
		map[string]string{"workload_id": "abc", "mode": "docker"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("Expected 409 for duplicate, got %d", rr.Code)
	}

	// Missing mode fails validation.
	rr = doJSON(t, router, http.MethodPost, "/api/v1/workloads",
		map[string]string{"workload_id": "def"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for missing mode, got %d", rr.Code)
	}
}

func TestStatusEndpoint(t *testing.T) {
	identity := "abc"

	f := backendtest.New()
	f.Containers = append(f.Containers, backendtest.MakeContainer(
		"c1", "workload-abc", workload.LabelKey, identity, "running",
		map[string]string{testNetwork: "172.17.0.2"}))

	router := newTestRouter(f)
	registerWorkload(t, router, identity, "docker")

	rr := doJSON(t, router, http.MethodGet, "/api/v1/workloads/"+identity, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Status returned %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Phase        string `json:"phase"`
		AssignedIP   string `json:"assigned_ip"`
		AssignedHost string `json:"assigned_host"`
		Polls        int    `json:"polls"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if resp.Phase != "running" || resp.AssignedIP != "172.17.0.2" || resp.AssignedHost != "workload-abc" {
		t.Fatalf("Unexpected status response: %+v", resp)
	}
	if resp.Polls != 1 {
		t.Fatalf("Expected 1 poll, got %d", resp.Polls)
	}
}

func TestStatusUnknownWorkload(t *testing.T) {
	router := newTestRouter(backendtest.New())

	rr := doJSON(t, router, http.MethodGet, "/api/v1/workloads/ghost", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
}

func TestStatusAmbiguous(t *testing.T) {
	identity := "abc"

	f := backendtest.New()
	f.Containers = append(f.Containers,
		backendtest.MakeContainer("c1", "one", workload.LabelKey, identity, "running", nil),
		backendtest.MakeContainer("c2", "two", workload.LabelKey, identity, "running", nil))

	router := newTestRouter(f)
	registerWorkload(t, router, identity, "docker")

	rr := doJSON(t, router, http.MethodGet, "/api/v1/workloads/"+identity, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("Expected 409 for ambiguous lookup, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestStatusBackendDown(t *testing.T) {
	f := backendtest.New()
	f.ListContainersErr = fmt.Errorf("engine unreachable")

	router := newTestRouter(f)
	registerWorkload(t, router, "abc", "docker")

	rr := doJSON(t, router, http.MethodGet, "/api/v1/workloads/abc", nil)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rr.Code)
	}
}

func TestPhasesEndpoint(t *testing.T) {
	router := newTestRouter(backendtest.New())
	registerWorkload(t, router, "abc", "swarm")

	rr := doJSON(t, router, http.MethodGet, "/api/v1/workloads/abc/phases", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Phases returned %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Initial []string `json:"initial"`
		Error   []string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if len(resp.Initial) != 3 || len(resp.Error) != 6 {
		t.Fatalf("Unexpected phase tables: %+v", resp)
	}
}

func TestLaunchEnvEndpoint(t *testing.T) {
	router := newTestRouter(backendtest.New())
	registerWorkload(t, router, "abc", "swarm")

	rr := doJSON(t, router, http.MethodPost, "/api/v1/workloads/abc/env",
		map[string][]string{"env": {"FOO=bar"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("LaunchEnv returned %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Env []string `json:"env"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	want := []string{"FOO=bar", workload.EnvNetwork + "=" + testNetwork, workload.EnvMode + "=swarm"}
	if len(resp.Env) != len(want) {
		t.Fatalf("Expected env %v, got %v", want, resp.Env)
	}
	for i := range want {
		if resp.Env[i] != want[i] {
			t.Fatalf("Expected env[%d]=%q, got %q", i, want[i], resp.Env[i])
		}
	}
}

func TestTerminateEndpoint(t *testing.T) {
	identity := "abc"

	f := backendtest.New()
	f.Containers = append(f.Containers, backendtest.MakeContainer(
		"c1", "workload-abc", workload.LabelKey, identity, "running", nil))

	router := newTestRouter(f)
	registerWorkload(t, router, identity, "docker")

	rr := doJSON(t, router, http.MethodDelete, "/api/v1/workloads/"+identity, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("Terminate returned %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if resp.Result != string(workload.Terminated) {
		t.Fatalf("Expected result %q, got %q", workload.Terminated, resp.Result)
	}

	// The entry is gone after a successful termination.
	rr = doJSON(t, router, http.MethodDelete, "/api/v1/workloads/"+identity, nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 after termination, got %d", rr.Code)
	}
}

func TestTerminateFailure(t *testing.T) {
	identity := "abc"

	f := backendtest.New()
	f.Containers = append(f.Containers, backendtest.MakeContainer(
		"c1", "workload-abc", workload.LabelKey, identity, "running", nil))
	f.RemoveContainerErr = fmt.Errorf("engine internal error")

	router := newTestRouter(f)
	registerWorkload(t, router, identity, "docker")

	rr := doJSON(t, router, http.MethodDelete, "/api/v1/workloads/"+identity, nil)
	if rr.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502 for failed termination, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Response is not valid JSON: %v", err)
	}
	if resp.Result != string(workload.TerminationFailed) {
		t.Fatalf("Expected result %q, got %q", workload.TerminationFailed, resp.Result)
	}
}
