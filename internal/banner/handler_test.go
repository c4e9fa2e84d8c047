package banner

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/BrezzeT/mebel-market-backend/internal/upload"
)

// testClock is the fixed "current moment" for active-window assertions.
var testClock = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, seed []Banner) (*fiber.App, *InMemoryRepository) {
	t.Helper()

	saver := upload.NewSaver(t.TempDir(), zap.NewNop())
	repo := NewInMemoryRepository(seed)
	service := NewService(repo)
	service.now = func() time.Time { return testClock }
	h := NewHandler(service, saver, zap.NewNop(), false)

	app := fiber.New()
	g := app.Group("/api/banners")
	h.RegisterPublicRoutes(g)
	h.RegisterAdminRoutes(g, saver.Images("image", "banners", 1))
	return app, repo
}

func seedBanner(title string, priority int) Banner {
	return Banner{
		ID:        primitive.NewObjectID(),
		Title:     title,
		Image:     "/uploads/banners/" + title + ".jpg",
		Position:  "main",
		Type:      "promotion",
		IsActive:  true,
		StartDate: testClock.AddDate(0, 0, -1),
		EndDate:   testClock.AddDate(0, 0, 1),
		Priority:  priority,
	}
}

func TestListByPosition_OnlyCurrentWindow(t *testing.T) {
	upcoming := seedBanner("upcoming", 9)
	upcoming.StartDate = testClock.AddDate(0, 0, 1)
	upcoming.EndDate = testClock.AddDate(0, 0, 2)

	disabled := seedBanner("disabled", 9)
	disabled.IsActive = false

	elsewhere := seedBanner("elsewhere", 9)
	elsewhere.Position = "promo"

	low := seedBanner("low-priority", 1)
	high := seedBanner("high-priority", 5)

	app, _ := newTestApp(t, []Banner{upcoming, disabled, elsewhere, low, high})

	res, err := app.Test(httptest.NewRequest("GET", "/api/banners/position/main", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var got []Banner
	if err := json.NewDecoder(res.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 visible banners, got %d", len(got))
	}
	if got[0].Title != "high-priority" || got[1].Title != "low-priority" {
		t.Fatalf("wrong order: %s, %s", got[0].Title, got[1].Title)
	}
}

func TestCreateBanner(t *testing.T) {
	app, repo := newTestApp(t, nil)

	body := `{
		"title": "Summer Sale",
		"image": "/uploads/banners/sale.jpg",
		"position": "main",
		"type": "promotion",
		"startDate": "2024-06-01T00:00:00Z",
		"endDate": "2024-08-31T00:00:00Z"
	}`
	req := httptest.NewRequest("POST", "/api/banners", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusCreated {
		b, _ := io.ReadAll(res.Body)
		t.Fatalf("expected 201, got %d: %s", res.StatusCode, b)
	}

	stored, _ := repo.List(context.Background(), Query{})
	if len(stored) != 1 {
		t.Fatalf("expected 1 stored banner, got %d", len(stored))
	}
	if !stored[0].IsActive {
		t.Fatalf("isActive must default to true")
	}
	if stored[0].Priority != 0 {
		t.Fatalf("priority must default to 0, got %d", stored[0].Priority)
	}
}

func TestCreateBanner_ValidationDetails(t *testing.T) {
	app, repo := newTestApp(t, nil)

	req := httptest.NewRequest("POST", "/api/banners",
		strings.NewReader(`{"title":"No dates","image":"/uploads/banners/x.jpg","position":"main","type":"promotion"}`))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}

	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "StartDate is required") {
		t.Fatalf("expected missing dates to be reported: %s", b)
	}

	stored, _ := repo.List(context.Background(), Query{})
	if len(stored) != 0 {
		t.Fatalf("invalid banner must not be stored")
	}
}

func TestUpdateBanner_FalseApplies(t *testing.T) {
	seed := seedBanner("current", 3)
	app, repo := newTestApp(t, []Banner{seed})

	req := httptest.NewRequest("PUT", "/api/banners/"+seed.ID.Hex(),
		strings.NewReader(`{"isActive":false,"priority":0}`))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	updated, err := repo.GetByID(context.Background(), seed.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if updated.IsActive {
		t.Fatalf("isActive=false was not applied")
	}
	if updated.Priority != 0 {
		t.Fatalf("priority=0 was not applied, got %d", updated.Priority)
	}
	if updated.Title != "current" {
		t.Fatalf("omitted title must stay, got %q", updated.Title)
	}
}

// Updates run through the same closed-vocabulary checks as creation, so a PUT
// cannot smuggle an unknown position or type into the store.
func TestUpdateBanner_RejectsUnknownVocabulary(t *testing.T) {
	seed := seedBanner("current", 3)
	app, repo := newTestApp(t, []Banner{seed})

	req := httptest.NewRequest("PUT", "/api/banners/"+seed.ID.Hex(),
		strings.NewReader(`{"position":"sidebar","type":"flash"}`))
	req.Header.Set("Content-Type", "application/json")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.StatusCode)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "Position must be one of") || !strings.Contains(string(b), "Type must be one of") {
		t.Fatalf("expected field details for both enums: %s", b)
	}

	stored, err := repo.GetByID(context.Background(), seed.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Position != "main" || stored.Type != "promotion" {
		t.Fatalf("invalid values persisted: position=%q type=%q", stored.Position, stored.Type)
	}
}

func TestListBanners_AdminFilters(t *testing.T) {
	active := seedBanner("active", 1)
	disabled := seedBanner("disabled", 1)
	disabled.IsActive = false
	app, _ := newTestApp(t, []Banner{active, disabled})

	res, err := app.Test(httptest.NewRequest("GET", "/api/banners?isActive=false", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	b, _ := io.ReadAll(res.Body)
	if !strings.Contains(string(b), "disabled") || strings.Contains(string(b), `"active"`) {
		t.Fatalf("isActive filter leaked: %s", b)
	}
}

func TestDeleteBanner_NotFound(t *testing.T) {
	app, _ := newTestApp(t, nil)

	res, err := app.Test(httptest.NewRequest("DELETE", "/api/banners/"+primitive.NewObjectID().Hex(), nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}
