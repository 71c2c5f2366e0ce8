package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObservePersistCountsFailures(t *testing.T) {
	before := testutil.ToFloat64(PersistFailures.WithLabelValues("test_op"))

	ObservePersist("test_op")(nil)
	ObservePersist("test_op")(errors.New("boom"))

	assert.Equal(t, before+1, testutil.ToFloat64(PersistFailures.WithLabelValues("test_op")))
}
