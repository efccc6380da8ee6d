package app

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chrystalio/budget-buddy-api/internal/domain"
	"github.com/chrystalio/budget-buddy-api/internal/testutil/notionfake"
	"github.com/chrystalio/budget-buddy-api/pkg/notionclient"
)

const (
	probeCategoriesDB   = "11111111111111111111111111111111"
	probeAccountsDB     = "22222222222222222222222222222222"
	probeTransactionsDB = "33333333333333333333333333333333"
)

func probeCollections() []Collection {
	return []Collection{
		{Name: "transactions", DatabaseID: probeTransactionsDB},
		{Name: "categories", DatabaseID: probeCategoriesDB},
		{Name: "accounts", DatabaseID: probeAccountsDB},
	}
}

func TestUpstreamProbe_AllReachable(t *testing.T) {
	fake := notionfake.New(t, probeCategoriesDB, probeAccountsDB, probeTransactionsDB)
	probe := NewUpstreamProbe(fake.Client(), probeCollections(), discardLogger())

	statuses, err := probe.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 3)
	assert.Equal(t, "transactions", statuses[0].Collection)
	for _, s := range statuses {
		assert.True(t, s.Reachable, s.Collection)
	}
}

func TestUpstreamProbe_ReportsMissingCollection(t *testing.T) {
	fake := notionfake.New(t, probeCategoriesDB, probeTransactionsDB)
	probe := NewUpstreamProbe(fake.Client(), probeCollections(), discardLogger())

	statuses, err := probe.Check(context.Background())
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindExternalAPI))
	assert.True(t, notionclient.IsCode(err, notionclient.CodeObjectNotFound))
	assert.Contains(t, err.Error(), "accounts")
	assert.False(t, statuses[2].Reachable)
}

func TestUpstreamProbe_Unauthorized(t *testing.T) {
	fake := notionfake.New(t, probeCategoriesDB, probeAccountsDB, probeTransactionsDB)
	client := notionclient.NewClient(fake.URL, "wrong")
	probe := NewUpstreamProbe(client, probeCollections(), discardLogger())

	_, err := probe.Check(context.Background())
	require.Error(t, err)
	assert.True(t, notionclient.IsCode(err, notionclient.CodeUnauthorized))

	var apiErr *notionclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestScheduler_EmptyScheduleDisablesProbe(t *testing.T) {
	probe := NewUpstreamProbe(nil, nil, discardLogger())
	s := NewScheduler(probe, "", discardLogger())

	require.NoError(t, s.Start())
	assert.Zero(t, s.Entries())
	<-s.Stop().Done()
}

func TestScheduler_RegistersProbe(t *testing.T) {
	probe := NewUpstreamProbe(nil, nil, discardLogger())
	s := NewScheduler(probe, "@every 1h", discardLogger())

	require.NoError(t, s.Start())
	assert.Equal(t, 1, s.Entries())
	<-s.Stop().Done()
}

func TestScheduler_RejectsBadSchedule(t *testing.T) {
	probe := NewUpstreamProbe(nil, nil, discardLogger())
	s := NewScheduler(probe, "every now and then", discardLogger())

	assert.Error(t, s.Start())
}
