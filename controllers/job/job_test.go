package jobController

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"skillchain/database/dbtest"
	"skillchain/services/bidding"
	jobValidator "skillchain/validators/job"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	db := dbtest.Open(t)
	dbtest.SeedJob(t, db, "j1", "client")

	h := &JobHandler{Bids: bidding.NewService(db)}
	app := fiber.New()
	// Caller comes from a header so one app serves several users
	auth := func(c *fiber.Ctx) error {
		c.Locals("userId", c.Get("X-User"))
		return c.Next()
	}
	app.Post("/jobs/:id/bids", auth, jobValidator.PlaceBid(), h.PlaceBid)
	app.Get("/jobs/:id/bids", auth, h.ListBids)
	return app
}

func bid(t *testing.T, app *fiber.App, user, jobID, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest("POST", "/jobs/"+jobID+"/bids", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User", user)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func TestPlaceBid(t *testing.T) {
	app := newApp(t)

	status, env := bid(t, app, "f1", "j1", `{"amount":40000,"proposal":"I can do it"}`)
	assert.Equal(t, 201, status)
	assert.True(t, env.Status)

	status, env = bid(t, app, "f1", "j1", `{"amount":39000}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "You have already bid on this job", env.Message)

	status, _ = bid(t, app, "client", "j1", `{"amount":1000}`)
	assert.Equal(t, 400, status)

	status, _ = bid(t, app, "f2", "missing", `{"amount":1000}`)
	assert.Equal(t, 404, status)

	status, _ = bid(t, app, "f2", "j1", `{"amount":0}`)
	assert.Equal(t, 422, status)

	req := httptest.NewRequest("GET", "/jobs/j1/bids", nil)
	req.Header.Set("X-User", "client")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	var list struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, 1, list.Total)
}
