package handlers_test

import (
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gigconnect/gigconnect_be/internal/models"
)

func TestApplyValidation(t *testing.T) {
	app, _ := setupApp(t)
	cToken, _ := registerUser(t, app, "Karin", "karin@example.com", "client")
	fToken, _ := registerUser(t, app, "Fajar", "fajar@example.com", "freelancer")
	gigID := createGig(t, app, cToken, gigOpts{})

	cases := []struct {
		name string
		body fiber.Map
	}{
		{"zero bid", fiber.Map{"proposal": "hi", "bid_amount": 0, "estimated_days": 5}},
		{"zero days", fiber.Map{"proposal": "hi", "bid_amount": 100, "estimated_days": 0}},
		{"empty proposal", fiber.Map{"proposal": "  ", "bid_amount": 100, "estimated_days": 5}},
	}
	for _, tc := range cases {
		resp, _ := doJSON(t, app, http.MethodPost, "/api/applications/"+gigID+"/apply", fToken, tc.body)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, tc.name)
	}

	resp, _ := doJSON(t, app, http.MethodPost, "/api/applications/00000000-0000-0000-0000-000000000009/apply", fToken, fiber.Map{
		"proposal": "hi", "bid_amount": 100, "estimated_days": 5,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestApplyTwiceConflicts(t *testing.T) {
	app, _ := setupApp(t)
	cToken, _ := registerUser(t, app, "Kika", "kika@example.com", "client")
	fToken, _ := registerUser(t, app, "Feri", "feri@example.com", "freelancer")
	gigID := createGig(t, app, cToken, gigOpts{})

	applyToGig(t, app, fToken, gigID, 100, 5)

	resp, out := doJSON(t, app, http.MethodPost, "/api/applications/"+gigID+"/apply", fToken, fiber.Map{
		"proposal": "second try", "bid_amount": 90, "estimated_days": 4,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, out["success"])
}

func TestApplyUniqueIndexBackstop(t *testing.T) {
	app, gdb := setupApp(t)
	cToken, _ := registerUser(t, app, "Kila", "kila@example.com", "client")
	fToken, fID := registerUser(t, app, "Fina", "fina@example.com", "freelancer")
	gigID := createGig(t, app, cToken, gigOpts{})
	appID := applyToGig(t, app, fToken, gigID, 100, 5)

	// insert langsung yang melewati handler tetap mental di unique index
	var first models.Application
	require.NoError(t, gdb.First(&first, "id = ?", appID).Error)
	dup := models.Application{
		GigID:         first.GigID,
		FreelancerID:  first.FreelancerID,
		Proposal:      "sneaky duplicate",
		BidAmount:     50,
		EstimatedDays: 2,
		Status:        models.ApplicationPending,
	}
	err := gdb.Create(&dup).Error
	require.Error(t, err, "freelancer %s", fID)
}

func TestApplyOnNonActiveGig(t *testing.T) {
	app, gdb := setupApp(t)
	cToken, _ := registerUser(t, app, "Koko", "koko@example.com", "client")
	fToken, _ := registerUser(t, app, "Fifi", "fifi@example.com", "freelancer")
	gigID := createGig(t, app, cToken, gigOpts{})

	require.NoError(t, gdb.Model(&models.Gig{}).Where("id = ?", gigID).
		Update("status", models.GigStatusCancelled).Error)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/applications/"+gigID+"/apply", fToken, fiber.Map{
		"proposal": "hi", "bid_amount": 100, "estimated_days": 5,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// The core scenario: accepting one application closes the gig, assigns the
// freelancer and rejects every sibling in the same step.
func TestAcceptCascade(t *testing.T) {
	app, gdb := setupApp(t)
	cToken, _ := registerUser(t, app, "Klien", "klien@example.com", "client")
	f1Token, f1ID := registerUser(t, app, "Satu", "satu@example.com", "freelancer")
	f2Token, _ := registerUser(t, app, "Dua", "dua@example.com", "freelancer")

	gigID := createGig(t, app, cToken, gigOpts{})
	app1 := applyToGig(t, app, f1Token, gigID, 100, 5)
	app2 := applyToGig(t, app, f2Token, gigID, 150, 3)

	resp, out := doJSON(t, app, http.MethodPut, "/api/applications/"+app1+"/accept", cToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "%v", out)
	accepted := out["application"].(map[string]interface{})
	assert.Equal(t, "accepted", accepted["status"])

	var gig models.Gig
	require.NoError(t, gdb.First(&gig, "id = ?", gigID).Error)
	assert.Equal(t, models.GigStatusInProgress, gig.Status)
	require.NotNil(t, gig.AssignedFreelancerID)
	assert.Equal(t, f1ID, gig.AssignedFreelancerID.String())

	var sibling models.Application
	require.NoError(t, gdb.First(&sibling, "id = ?", app2).Error)
	assert.Equal(t, models.ApplicationRejected, sibling.Status)

	// lamaran kedua sudah tertolak, accept berikutnya harus gagal
	resp, _ = doJSON(t, app, http.MethodPut, "/api/applications/"+app2+"/accept", cToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// dan tidak pernah ada dua accepted di satu gig
	var count int64
	require.NoError(t, gdb.Model(&models.Application{}).
		Where("gig_id = ? AND status = ?", gigID, models.ApplicationAccepted).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAcceptByNonOwnerForbidden(t *testing.T) {
	app, _ := setupApp(t)
	ownerToken, _ := registerUser(t, app, "Pemilik", "pemilik@example.com", "client")
	otherToken, _ := registerUser(t, app, "Lain", "lain@example.com", "client")
	fToken, _ := registerUser(t, app, "Febi", "febi@example.com", "freelancer")

	gigID := createGig(t, app, ownerToken, gigOpts{})
	appID := applyToGig(t, app, fToken, gigID, 100, 5)

	resp, _ := doJSON(t, app, http.MethodPut, "/api/applications/"+appID+"/accept", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodPut, "/api/applications/00000000-0000-0000-0000-000000000009/accept", ownerToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRejectApplication(t *testing.T) {
	app, _ := setupApp(t)
	cToken, _ := registerUser(t, app, "Kina", "kina@example.com", "client")
	fToken, _ := registerUser(t, app, "Fono", "fono@example.com", "freelancer")

	gigID := createGig(t, app, cToken, gigOpts{})
	appID := applyToGig(t, app, fToken, gigID, 100, 5)

	resp, out := doJSON(t, app, http.MethodPut, "/api/applications/"+appID+"/reject", cToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "%v", out)
	rejected := out["application"].(map[string]interface{})
	assert.Equal(t, "rejected", rejected["status"])

	// status terminal, tidak bisa ditolak dua kali
	resp, _ = doJSON(t, app, http.MethodPut, "/api/applications/"+appID+"/reject", cToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// juga tidak bisa di-accept lagi
	resp, _ = doJSON(t, app, http.MethodPut, "/api/applications/"+appID+"/accept", cToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWithdrawApplication(t *testing.T) {
	app, _ := setupApp(t)
	cToken, _ := registerUser(t, app, "Kiki", "kiki@example.com", "client")
	fToken, _ := registerUser(t, app, "Fredo", "fredo@example.com", "freelancer")
	otherFToken, _ := registerUser(t, app, "Fimi", "fimi@example.com", "freelancer")

	gigID := createGig(t, app, cToken, gigOpts{})
	appID := applyToGig(t, app, fToken, gigID, 100, 5)

	// lamaran orang lain tersamar sebagai 404
	resp, _ := doJSON(t, app, http.MethodPut, "/api/applications/"+appID+"/withdraw", otherFToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, out := doJSON(t, app, http.MethodPut, "/api/applications/"+appID+"/withdraw", fToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "%v", out)

	resp, _ = doJSON(t, app, http.MethodPut, "/api/applications/"+appID+"/withdraw", fToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListApplicationsForGig(t *testing.T) {
	app, _ := setupApp(t)
	cToken, _ := registerUser(t, app, "Kora", "kora@example.com", "client")
	otherToken, _ := registerUser(t, app, "Kuri", "kuri@example.com", "client")
	fToken, _ := registerUser(t, app, "Fello", "fello@example.com", "freelancer")

	gigID := createGig(t, app, cToken, gigOpts{})
	applyToGig(t, app, fToken, gigID, 100, 5)

	resp, _ := doJSON(t, app, http.MethodGet, "/api/applications/gig/"+gigID, otherToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, out := doJSON(t, app, http.MethodGet, "/api/applications/gig/"+gigID, cToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "%v", out)
	apps := out["applications"].([]interface{})
	require.Len(t, apps, 1)
	first := apps[0].(map[string]interface{})
	freelancer := first["freelancer"].(map[string]interface{})
	assert.Equal(t, "fello@example.com", freelancer["email"])
}

func TestMyApplicationsIncludesGigAndClient(t *testing.T) {
	app, _ := setupApp(t)
	cToken, cID := registerUser(t, app, "Kuno", "kuno@example.com", "client")
	fToken, _ := registerUser(t, app, "Fiko", "fiko@example.com", "freelancer")

	gigID := createGig(t, app, cToken, gigOpts{Title: "Data cleanup"})
	applyToGig(t, app, fToken, gigID, 120, 4)

	resp, out := doJSON(t, app, http.MethodGet, "/api/applications/my-applications", fToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "%v", out)
	apps := out["applications"].([]interface{})
	require.Len(t, apps, 1)
	first := apps[0].(map[string]interface{})
	gig := first["gig"].(map[string]interface{})
	assert.Equal(t, "Data cleanup", gig["title"])
	client := gig["client"].(map[string]interface{})
	assert.Equal(t, cID, client["id"])
}

func TestClientApplicationsGroupedByGig(t *testing.T) {
	app, _ := setupApp(t)
	cToken, _ := registerUser(t, app, "Kadi", "kadi@example.com", "client")
	f1Token, _ := registerUser(t, app, "Fras", "fras@example.com", "freelancer")
	f2Token, _ := registerUser(t, app, "Fros", "fros@example.com", "freelancer")

	gig1 := createGig(t, app, cToken, gigOpts{Title: "Gig satu"})
	gig2 := createGig(t, app, cToken, gigOpts{Title: "Gig dua"})
	applyToGig(t, app, f1Token, gig1, 100, 5)
	applyToGig(t, app, f2Token, gig1, 110, 6)
	applyToGig(t, app, f1Token, gig2, 120, 7)

	resp, out := doJSON(t, app, http.MethodGet, "/api/applications/client/my-applications", cToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "%v", out)
	assert.EqualValues(t, 3, out["totalApplications"])
	byGig := out["applicationsByGig"].([]interface{})
	assert.Len(t, byGig, 2)
}

func TestStats(t *testing.T) {
	app, _ := setupApp(t)
	cToken, _ := registerUser(t, app, "Kemal", "kemal@example.com", "client")
	f1Token, _ := registerUser(t, app, "Fbudi", "fbudi@example.com", "freelancer")
	f2Token, _ := registerUser(t, app, "Fandi", "fandi@example.com", "freelancer")

	gig1 := createGig(t, app, cToken, gigOpts{})
	gig2 := createGig(t, app, cToken, gigOpts{Title: "Second gig"})
	acceptedID := applyToGig(t, app, f1Token, gig1, 100, 5)
	applyToGig(t, app, f2Token, gig1, 110, 6)
	withdrawnID := applyToGig(t, app, f1Token, gig2, 130, 2)

	_, _ = doJSON(t, app, http.MethodPut, "/api/applications/"+acceptedID+"/accept", cToken, nil)
	_, _ = doJSON(t, app, http.MethodPut, "/api/applications/"+withdrawnID+"/withdraw", f1Token, nil)

	// client melihat semua lamaran di gig miliknya
	resp, out := doJSON(t, app, http.MethodGet, "/api/applications/stats", cToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "%v", out)
	stats := out["stats"].(map[string]interface{})
	assert.EqualValues(t, 3, stats["total"])
	assert.EqualValues(t, 1, stats["accepted"])
	assert.EqualValues(t, 1, stats["rejected"]) // sibling tertolak oleh cascade
	assert.EqualValues(t, 1, stats["withdrawn"])
	assert.EqualValues(t, 0, stats["pending"])

	// freelancer hanya melihat lamarannya sendiri
	resp, out = doJSON(t, app, http.MethodGet, "/api/applications/stats", f1Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats = out["stats"].(map[string]interface{})
	assert.EqualValues(t, 2, stats["total"])
	assert.EqualValues(t, 1, stats["accepted"])
	assert.EqualValues(t, 1, stats["withdrawn"])
}
