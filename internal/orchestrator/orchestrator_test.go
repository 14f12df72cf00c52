package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/energy-intelligence/internal/inference"
	"github.com/OldStager01/energy-intelligence/pkg/config"
	"github.com/OldStager01/energy-intelligence/pkg/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Models.Dir = "../../artifacts/models"
	cfg.Datasets.Dir = "../../artifacts/data"
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestStateConfig_FileSourceAddsExtension(t *testing.T) {
	cfg := testConfig(t)
	sc := StateConfig(cfg, nil)

	assert.Equal(t, "datacenter_timeseries.csv", sc.Series.Name)
	assert.Equal(t, "dc_power_w", sc.Series.Column)
	assert.Equal(t, "timestamp", sc.Series.OrderBy)
	assert.Equal(t, "vm_features.csv", sc.VMFeatures)

	cfg.Datasets.Source = config.SourcePostgres
	sc = StateConfig(cfg, nil)
	assert.Equal(t, "datacenter_timeseries", sc.Series.Name)
}

func TestNew_LoadsShippedArtifacts(t *testing.T) {
	o, err := New(context.Background(), testConfig(t))
	require.NoError(t, err)

	summary := o.State().Summary()
	assert.Len(t, summary.Models, 4)
	assert.Equal(t, 288, summary.PowerReadings)

	ctx := context.Background()
	power, err := o.Gateway().RealtimePower(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, power.DCPowerW, 0.0)

	_, err = o.Gateway().PredictPower(ctx)
	require.NoError(t, err)

	vm, err := o.Gateway().VMInference(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, vm.CPUAvg, 0.0)
	assert.LessOrEqual(t, vm.CPUAvg, 100.0)
	assert.Contains(t, models.CoreCounts, vm.CoreCount)
	assert.InDelta(t, inference.EstimatePower(vm.CPUAvg, vm.CoreCount), vm.EstimatedPowerW, 1e-9)
	assert.Equal(t, inference.Recommend(vm.CPUAvg), vm.Recommendation)
	assert.GreaterOrEqual(t, vm.Cluster, 0)
	assert.Less(t, vm.Cluster, 4)
}

func TestNew_SameSeedSameSequence(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	sequence := func() []interface{} {
		o, err := New(ctx, cfg)
		require.NoError(t, err)
		var out []interface{}
		for i := 0; i < 3; i++ {
			p, err := o.Gateway().RealtimePower(ctx)
			require.NoError(t, err)
			vm, err := o.Gateway().VMInference(ctx)
			require.NoError(t, err)
			out = append(out, *p, *vm)
		}
		return out
	}

	assert.Equal(t, sequence(), sequence())
}

func TestNew_MissingArtifactFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.Models.Forecaster = "missing.json"

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}

func TestOrchestrator_StreamPublishes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Stream.Enabled = true
	cfg.Stream.Interval = time.Hour

	o, err := New(context.Background(), cfg)
	require.NoError(t, err)
	ch := o.SubscribeAllEvents()

	o.Start()
	defer o.Stop()

	select {
	case e := <-ch:
		assert.Equal(t, models.EventTypePowerSampled, e.Type)
		assert.Equal(t, cfg.App.Name, e.Source)
		assert.NotEmpty(t, e.TraceID)
	case <-time.After(2 * time.Second):
		t.Fatal("no event from stream")
	}
}

func TestOpenDatabase_FileSourceHasNone(t *testing.T) {
	_, err := OpenDatabase(testConfig(t))
	assert.Error(t, err)
}
