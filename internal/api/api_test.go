package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mjashby/forage/internal/history"
	"github.com/mjashby/forage/internal/settings"
	"github.com/mjashby/forage/internal/testutil"
	"github.com/mjashby/forage/internal/tracker"
)

// testEnv sets up a temp store, the standard test catalog, a service, and a
// router. authToken != "" enables token mode.
func testEnv(t *testing.T, authToken string) (*tracker.Service, http.Handler) {
	t.Helper()

	store := testutil.TestStore(t)
	cat, ix := testutil.TestCatalog(t)

	log, err := history.Load(store, cat)
	if err != nil {
		t.Fatalf("history.Load: %v", err)
	}
	set, err := settings.Load(store, nil)
	if err != nil {
		t.Fatalf("settings.Load: %v", err)
	}

	svc := tracker.NewService(cat, ix, log, set, 20, nil, nil)
	router := NewRouter(svc, authToken != "", authToken, nil)
	return svc, router
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(data)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListFoods(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodGet, "/foods", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Foods []AliasItem `json:"foods"`
		Total int         `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	// apple + 2 synonyms, banana, pea, peanut butter + 1 synonym.
	if resp.Total != 7 {
		t.Errorf("total = %d, want 7", resp.Total)
	}
	if resp.Foods[0].Alias != "apple" {
		t.Errorf("first alias = %q, want apple", resp.Foods[0].Alias)
	}
}

func TestMatch(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/match", MatchRequest{Text: "I had a green apple and a banana"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Matches []AliasItem `json:"matches"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(resp.Matches))
	}
	if resp.Matches[0].Alias != "green apple" || resp.Matches[0].Food != "apple" {
		t.Errorf("first match = %+v", resp.Matches[0])
	}
}

func TestMatch_InvalidBody(t *testing.T) {
	_, router := testEnv(t, "")
	req := httptest.NewRequest(http.MethodPost, "/match", bytes.NewReader([]byte("{")))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestLogAndListEvents(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodPost, "/log", LogRequest{Aliases: []string{"green apple", "banana"}})
	if w.Code != http.StatusCreated {
		t.Fatalf("log status = %d, body = %s", w.Code, w.Body.String())
	}
	var created struct {
		Added int      `json:"added"`
		Week  WeekItem `json:"week"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Added != 2 {
		t.Errorf("added = %d, want 2", created.Added)
	}
	if created.Week.Count != 2 || created.Week.Met {
		t.Errorf("week = %+v", created.Week)
	}

	w = doJSON(t, router, http.MethodGet, "/log", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var listed struct {
		Events []EventItem `json:"events"`
		Total  int         `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if listed.Total != 2 {
		t.Errorf("total = %d, want 2", listed.Total)
	}
	if listed.Events[0].ConsumedName == "" || listed.Events[0].FoodName == "" {
		t.Errorf("event = %+v", listed.Events[0])
	}
}

func TestLog_UnknownAlias(t *testing.T) {
	_, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodPost, "/log", LogRequest{Aliases: []string{"dragonfruit"}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422, body = %s", w.Code, w.Body.String())
	}
}

func TestLog_EmptyAliases(t *testing.T) {
	_, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodPost, "/log", LogRequest{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestClearEvents(t *testing.T) {
	_, router := testEnv(t, "")

	_ = doJSON(t, router, http.MethodPost, "/log", LogRequest{Aliases: []string{"apple"}})
	w := doJSON(t, router, http.MethodDelete, "/log", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/log", nil)
	var listed struct {
		Total int `json:"total"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &listed)
	if listed.Total != 0 {
		t.Errorf("total after clear = %d", listed.Total)
	}
}

func TestWeeks(t *testing.T) {
	_, router := testEnv(t, "")

	// Empty log: empty weeks array, not null.
	w := doJSON(t, router, http.MethodGet, "/weeks", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("weeks status = %d", w.Code)
	}
	if !bytes.Contains(w.Body.Bytes(), []byte(`"weeks":[]`)) {
		t.Errorf("empty weeks body = %s", w.Body.String())
	}

	_ = doJSON(t, router, http.MethodPost, "/log", LogRequest{Aliases: []string{"apple"}})

	w = doJSON(t, router, http.MethodGet, "/weeks", nil)
	var resp struct {
		Weeks []WeekItem `json:"weeks"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Weeks) != 1 {
		t.Fatalf("weeks = %d, want 1", len(resp.Weeks))
	}
	if resp.Weeks[0].Count != 1 || resp.Weeks[0].Goal != 20 {
		t.Errorf("week = %+v", resp.Weeks[0])
	}
}

func TestCurrentWeek(t *testing.T) {
	_, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodGet, "/weeks/current", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var wk WeekItem
	if err := json.Unmarshal(w.Body.Bytes(), &wk); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if wk.Count != 0 || wk.Met {
		t.Errorf("week = %+v", wk)
	}
	if !wk.End.After(wk.Start) {
		t.Errorf("window = [%v, %v]", wk.Start, wk.End)
	}
}

func TestWeekStartSetting(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(t, router, http.MethodGet, "/settings/week-start", nil)
	var got WeekStartSetting
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.WeekStart != 0 {
		t.Errorf("default week start = %d", got.WeekStart)
	}

	w = doJSON(t, router, http.MethodPut, "/settings/week-start", WeekStartSetting{WeekStart: 1})
	if w.Code != http.StatusOK {
		t.Fatalf("put status = %d", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/settings/week-start", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.WeekStart != 1 {
		t.Errorf("week start = %d, want 1", got.WeekStart)
	}
}

func TestWeekStartSetting_Invalid(t *testing.T) {
	_, router := testEnv(t, "")
	w := doJSON(t, router, http.MethodPut, "/settings/week-start", WeekStartSetting{WeekStart: 9})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAuth(t *testing.T) {
	_, router := testEnv(t, "sekret")

	req := httptest.NewRequest(http.MethodGet, "/foods", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/foods", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("bad token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/foods", nil)
	req.Header.Set("Authorization", "Bearer sekret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("good token status = %d, want 200", w.Code)
	}
}
