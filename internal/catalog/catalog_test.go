package catalog

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"surfaura/pkg/logger"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	packages := c.Packages()
	require.Len(t, packages, 3)
	assert.Equal(t, Package{
		ID:       "starter-surf",
		Title:    "Starter Surf",
		Price:    59,
		Duration: "2 hrs",
		Features: []string{"Beginner-friendly", "Board + wetsuit included", "1:4 coach ratio"},
		Badge:    "Popular",
	}, packages[0])
	assert.Equal(t, "wave-master", packages[1].ID)
	assert.Equal(t, 299, packages[2].Price)

	events := c.Events()
	require.Len(t, events, 4)
	assert.Equal(t, Event{
		ID:    "sunrise-yoga",
		Title: "Sunrise Yoga by the Waves",
		Date:  "2025-12-03",
		Type:  "Wellness",
		Time:  "6:00 AM",
	}, events[0])
	assert.Equal(t, []string{"sunrise-yoga", "music-fest", "beach-games", "night-surf"},
		[]string{events[0].ID, events[1].ID, events[2].ID, events[3].ID})
}

func TestAccessorsReturnCopies(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	packages := c.Packages()
	packages[0].Title = "changed"
	packages[0].Features[0] = "changed"
	c.Events()[0].Title = "changed"

	assert.Equal(t, "Starter Surf", c.Packages()[0].Title)
	assert.Equal(t, "Beginner-friendly", c.Packages()[0].Features[0])
	assert.Equal(t, "Sunrise Yoga by the Waves", c.Events()[0].Title)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load([]byte("packages: ["))
	assert.Error(t, err)

	_, err = Load([]byte("packages:\n  - title: nameless\n"))
	assert.Error(t, err)

	_, err = Load([]byte("packages:\n  - id: a\n  - id: a\n"))
	assert.Error(t, err)
}

func TestHandler_Repeatable(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	router := httprouter.New()
	NewHandler(c, logger.Discard()).RegisterRoutes(router)

	for _, path := range []string{"/api/packages", "/api/events"} {
		t.Run(path, func(t *testing.T) {
			var bodies []string
			for i := 0; i < 3; i++ {
				w := httptest.NewRecorder()
				router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
				require.Equal(t, http.StatusOK, w.Code)
				assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
				bodies = append(bodies, w.Body.String())
			}
			assert.Equal(t, bodies[0], bodies[1])
			assert.Equal(t, bodies[1], bodies[2])
		})
	}
}

func TestHandler_PackagesBody(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	NewHandler(c, logger.Discard()).Packages(w, httptest.NewRequest(http.MethodGet, "/api/packages", nil), nil)

	assert.Contains(t, w.Body.String(), `{"packages":[{"id":"starter-surf","title":"Starter Surf","price":59,"duration":"2 hrs","features":["Beginner-friendly","Board + wetsuit included","1:4 coach ratio"],"badge":"Popular"}`)
}
