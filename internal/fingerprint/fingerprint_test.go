package fingerprint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrodrigc/campuseats-client/models"
)

func sampleOrders() []models.Order {
	created := time.Date(2026, 3, 10, 12, 30, 0, 0, time.UTC)
	return []models.Order{
		{ID: 41, Status: models.StatusPending, Total: 12.50, StoreName: "Cafetería Central", CreatedAt: created},
		{ID: 42, Status: models.StatusPreparing, Total: 8.75, StoreName: "La Esquina", CreatedAt: created},
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	orders := sampleOrders()

	first := Fingerprint(orders)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Fingerprint(orders))
	}
}

func TestFingerprint_SensitiveToStatus(t *testing.T) {
	orders := sampleOrders()
	before := Fingerprint(orders)

	orders[1].Status = models.StatusReady

	assert.NotEqual(t, before, Fingerprint(orders))
	assert.True(t, Changed(before, Fingerprint(orders)))
}

func TestFingerprint_SensitiveToTotal(t *testing.T) {
	orders := sampleOrders()
	before := Fingerprint(orders)

	orders[0].Total += 0.01

	assert.NotEqual(t, before, Fingerprint(orders))
}

func TestFingerprint_SensitiveToID(t *testing.T) {
	orders := sampleOrders()
	before := Fingerprint(orders)

	orders[0].ID = 99

	assert.NotEqual(t, before, Fingerprint(orders))
}

func TestFingerprint_EmptySentinel(t *testing.T) {
	fp := Fingerprint(nil)

	require.Equal(t, Empty, fp)
	assert.Equal(t, fp, Fingerprint([]models.Order{}))
	// "" is the not-yet-fetched zero value and must differ from the sentinel.
	assert.True(t, Changed("", fp))
}

func TestFingerprint_SyntheticKey(t *testing.T) {
	orders := sampleOrders()
	before := Fingerprint(orders)

	orders[0].LocalID = "local-7f3a"

	// the synthetic id replaces the server id as identity
	assert.NotEqual(t, before, Fingerprint(orders))
}
