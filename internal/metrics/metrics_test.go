package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBuildObserver(t *testing.T) {
	okBefore := testutil.ToFloat64(BuildsTotal.WithLabelValues("ok"))
	errBefore := testutil.ToFloat64(BuildsTotal.WithLabelValues("error"))

	var o BuildObserver
	o.ObserveBuild(3*time.Millisecond, 42, nil)
	o.ObserveBuild(time.Millisecond, 0, errors.New("boom"))

	if got := testutil.ToFloat64(BuildsTotal.WithLabelValues("ok")) - okBefore; got != 1 {
		t.Errorf("ok builds delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(BuildsTotal.WithLabelValues("error")) - errBefore; got != 1 {
		t.Errorf("error builds delta = %v, want 1", got)
	}
	if got := testutil.ToFloat64(IndexedLocations); got != 42 {
		t.Errorf("IndexedLocations = %v, want 42", got)
	}
}

func TestObserve(t *testing.T) {
	before := testutil.ToFloat64(EmptyResultsTotal.WithLabelValues("search"))
	Observe("search", time.Millisecond, true)
	Observe("search", time.Millisecond, false)
	if got := testutil.ToFloat64(EmptyResultsTotal.WithLabelValues("search")) - before; got != 1 {
		t.Errorf("empty results delta = %v, want 1", got)
	}
}
