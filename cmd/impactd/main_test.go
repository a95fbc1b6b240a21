package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/impactd/internal/config"
)

// daemon runs impactd on a free port until the test ends or stop is called.
type daemon struct {
	base   string
	stop   context.CancelFunc
	result chan error
}

func startDaemon(t *testing.T) *daemon {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	t.Setenv("IMPACTD_SERVER_PORT", strconv.Itoa(port))

	ctx, cancel := context.WithCancel(context.Background())
	d := &daemon{base: "http://127.0.0.1:" + strconv.Itoa(port), stop: cancel, result: make(chan error, 1)}
	go func() { d.result <- run(ctx, "") }()
	t.Cleanup(cancel)

	require.Eventually(t, func() bool {
		resp, err := http.Get(d.base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond, "daemon never became healthy")
	return d
}

func (d *daemon) say(t *testing.T, text string) string {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"chat_id": "7", "text": text})
	require.NoError(t, err)

	resp, err := http.Post(d.base+"/api/v1/messages", "application/json", strings.NewReader(string(payload)))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode, "text %q", text)

	var out struct {
		Reply string `json:"reply"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out.Reply
}

func (d *daemon) shutdown(t *testing.T) {
	t.Helper()
	d.stop()
	select {
	case err := <-d.result:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestRun_PersistsAcrossRestart(t *testing.T) {
	if testing.Short() {
		t.Skip("starts the full daemon")
	}

	dir := t.TempDir()
	dataFile := filepath.Join(dir, "projects.csv")
	t.Setenv("HOME", dir)
	t.Setenv("IMPACTD_STORAGE_PATH", dataFile)
	t.Setenv("IMPACTD_LOGGING_OUTPUT", "stderr")

	first := startDaemon(t)
	assert.Contains(t, first.say(t, "/add Victory Park, Litter on the paths, A. Ivanov, 2025-05-01"), "№1")
	assert.Contains(t, first.say(t, "/status 1, In progress"), "In progress")
	first.shutdown(t)

	data, err := os.ReadFile(dataFile)
	require.NoError(t, err)
	assert.Equal(t,
		"ID,Name,Problem,Initiator,Deadline,Status,Executor\n"+
			"1,Victory Park,Litter on the paths,A. Ivanov,2025-05-01,In progress,Unassigned\n",
		string(data))

	second := startDaemon(t)
	info := second.say(t, "/info 1")
	assert.Contains(t, info, "Victory Park")
	assert.Contains(t, info, "In progress")
	assert.Contains(t, second.say(t, "/add Riverbank, Erosion, B. Petrova, 2025-06-01"), "№2")
	second.shutdown(t)
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("IMPACTD_STORAGE_CODEC", "tsv")

	err := run(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage codec")
}

func TestInitLogger(t *testing.T) {
	logger, err := initLogger(config.LoggingConfig{Level: "debug", Format: "console", Output: "stderr"})
	require.NoError(t, err)
	assert.NotNil(t, logger)

	_, err = initLogger(config.LoggingConfig{Level: "loud"})
	assert.Error(t, err)
}
