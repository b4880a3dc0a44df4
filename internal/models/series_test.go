package models

import "testing"

func TestTimeSeriesMonthsOrdered(t *testing.T) {
	ts := TimeSeries{
		{Year: 1990, Month: 3}:  1.0,
		{Year: 1889, Month: 12}: 2.0,
		{Year: 1990, Month: 1}:  3.0,
	}

	months := ts.Months()
	if len(months) != 3 {
		t.Fatalf("expected 3 months, got %d", len(months))
	}

	for i := 1; i < len(months); i++ {
		if !months[i-1].Before(months[i]) {
			t.Errorf("months not in chronological order: %v before %v", months[i-1], months[i])
		}
	}

	if months[0] != (YearMonth{Year: 1889, Month: 12}) {
		t.Errorf("expected earliest month 1889-12, got %v", months[0])
	}
}

func TestTimeSeriesCloneIndependent(t *testing.T) {
	orig := TimeSeries{{Year: 1900, Month: 1}: 5.5}
	clone := orig.Clone()

	clone[YearMonth{Year: 1900, Month: 2}] = 6.0

	if orig.Len() != 1 {
		t.Errorf("mutating clone changed original, len=%d", orig.Len())
	}
	if v, ok := clone.Get(YearMonth{Year: 1900, Month: 1}); !ok || v != 5.5 {
		t.Errorf("clone lost original value, got %v ok=%v", v, ok)
	}
}

func TestTimeSeriesMissingIsAbsent(t *testing.T) {
	ts := make(TimeSeries)
	if _, ok := ts.Get(YearMonth{Year: 1950, Month: 6}); ok {
		t.Error("empty series reported an observation")
	}
}

func TestCombinedRecordEmpty(t *testing.T) {
	rec := NewCombinedRecord()
	if !rec.Empty() {
		t.Error("fresh combined record should be empty")
	}

	rec.Values[YearMonth{Year: 1880, Month: 1}] = -1.2
	rec.Support[YearMonth{Year: 1880, Month: 1}] = 1
	if rec.Empty() {
		t.Error("record with a value should not be empty")
	}
}
