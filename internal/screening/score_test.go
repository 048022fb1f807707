package screening

import (
	"errors"
	"math/rand"
	"testing"
)

// --- Score: preconditions ---

func TestScore_EmptyResponses(t *testing.T) {
	_, err := Score(Default(), ResponseSet{})
	if !errors.Is(err, ErrNoResponses) {
		t.Fatalf("Score(empty) error = %v, want ErrNoResponses", err)
	}
	if !errors.Is(err, ErrInvalidResponse) {
		t.Error("ErrNoResponses should be an ErrInvalidResponse")
	}
}

func TestScore_NilResponses(t *testing.T) {
	if _, err := Score(Default(), nil); !errors.Is(err, ErrNoResponses) {
		t.Fatalf("Score(nil) error = %v, want ErrNoResponses", err)
	}
}

func TestScore_InvalidResponses(t *testing.T) {
	tests := []struct {
		name      string
		responses ResponseSet
		wantItem  int
		wantIndex int
	}{
		{"unknown item", ResponseSet{21: 0}, 21, 0},
		{"item zero", ResponseSet{0: 0}, 0, 0},
		{"index too high", ResponseSet{6: 3}, 6, 3},
		{"negative index", ResponseSet{1: -1}, 1, -1},
		{"first bad item reported", ResponseSet{1: 0, 7: 9, 30: 0}, 7, 9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Score(Default(), tt.responses)
			if !errors.Is(err, ErrInvalidResponse) {
				t.Fatalf("error = %v, want ErrInvalidResponse", err)
			}
			var re *ResponseError
			if !errors.As(err, &re) {
				t.Fatalf("error %T is not a *ResponseError", err)
			}
			if re.Item != tt.wantItem || re.Index != tt.wantIndex {
				t.Errorf("ResponseError = item %d index %d, want item %d index %d",
					re.Item, re.Index, tt.wantItem, tt.wantIndex)
			}
		})
	}
}

// --- Score: arithmetic ---

func TestScore_SampleResponses(t *testing.T) {
	res, err := Score(Default(), SampleResponses())
	if err != nil {
		t.Fatalf("Score(sample) error: %v", err)
	}

	// exposure:      3+2+2+2+1+2+0 = 12
	// outcomes:      2+1+1+1+3+3   = 11
	// psychological: 2+2+2+1+2     = 9
	// temporal:      2+3           = 5
	want := map[Domain]float64{
		DomainExposure:      12,
		DomainOutcomes:      11,
		DomainPsychological: 9,
		DomainTemporal:      5,
	}
	for d, w := range want {
		if got := res.Subscales[d]; got != w {
			t.Errorf("Subscales[%s] = %v, want %v", d, got, w)
		}
	}
	if res.Total != 37 {
		t.Errorf("Total = %v, want 37", res.Total)
	}
}

func TestScore_SampleMatchesWeightTable(t *testing.T) {
	cat := Default()
	responses := SampleResponses()

	want := 0.0
	for n, idx := range responses {
		it, _ := cat.Item(n)
		want += it.Weights[idx]
	}

	res, err := Score(cat, responses)
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if res.Total != want {
		t.Errorf("Total = %v, want %v recomputed from weights", res.Total, want)
	}
}

func TestScore_PartialAdministration(t *testing.T) {
	res, err := Score(Default(), ResponseSet{19: 0})
	if err != nil {
		t.Fatalf("Score(partial) error: %v", err)
	}
	if res.Total != 4 {
		t.Errorf("Total = %v, want 4", res.Total)
	}
	if res.Subscales[DomainTemporal] != 4 {
		t.Errorf("Subscales[temporal] = %v, want 4", res.Subscales[DomainTemporal])
	}
	for _, d := range []Domain{DomainExposure, DomainOutcomes, DomainPsychological} {
		v, ok := res.Subscales[d]
		if !ok {
			t.Errorf("Subscales missing %s", d)
		}
		if v != 0 {
			t.Errorf("Subscales[%s] = %v, want 0", d, v)
		}
	}
}

func TestScore_FractionalWeightsPreserved(t *testing.T) {
	cat := Catalog{Items: []Item{
		{Number: 1, Domain: DomainExposure, Options: []string{"a", "b"}, Weights: []float64{0, 0.5}},
		{Number: 2, Domain: DomainTemporal, Options: []string{"a", "b"}, Weights: []float64{0, 1.25}},
	}}
	res, err := Score(cat, ResponseSet{1: 1, 2: 1})
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if res.Total != 1.75 {
		t.Errorf("Total = %v, want 1.75", res.Total)
	}
}

// --- Score: properties ---

func TestScore_TotalEqualsSumOfSubscales(t *testing.T) {
	cat := Default()
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 200; round++ {
		responses := randomResponses(rng, cat)
		if len(responses) == 0 {
			continue
		}
		res, err := Score(cat, responses)
		if err != nil {
			t.Fatalf("round %d: Score error: %v", round, err)
		}
		sum := 0.0
		for _, v := range res.Subscales {
			sum += v
		}
		if sum != res.Total {
			t.Fatalf("round %d: subscale sum %v != total %v", round, sum, res.Total)
		}
	}
}

func TestScore_EachOptionContributesItsWeight(t *testing.T) {
	cat := Default()
	base := ResponseSet{1: 1, 8: 2, 14: 3, 20: 1}

	baseRes, err := Score(cat, base)
	if err != nil {
		t.Fatalf("Score(base) error: %v", err)
	}

	for _, it := range cat.Items {
		if _, taken := base[it.Number]; taken {
			continue
		}
		for idx, w := range it.Weights {
			responses := ResponseSet{it.Number: idx}
			for k, v := range base {
				responses[k] = v
			}

			res, err := Score(cat, responses)
			if err != nil {
				t.Fatalf("item %d option %d: %v", it.Number, idx, err)
			}
			if got := res.Total - baseRes.Total; got != w {
				t.Errorf("item %d option %d: total delta %v, want %v", it.Number, idx, got, w)
			}
			if got := res.Subscales[it.Domain] - baseRes.Subscales[it.Domain]; got != w {
				t.Errorf("item %d option %d: %s delta %v, want %v", it.Number, idx, it.Domain, got, w)
			}
		}
	}
}

func TestScore_DoesNotMutateInput(t *testing.T) {
	responses := SampleResponses()
	if _, err := Score(Default(), responses); err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if len(responses) != 20 || responses[1] != 3 {
		t.Error("Score mutated the response set")
	}
}

// randomResponses answers a random subset of items with random valid options.
func randomResponses(rng *rand.Rand, cat Catalog) ResponseSet {
	out := ResponseSet{}
	for _, it := range cat.Items {
		if rng.Intn(3) == 0 {
			continue
		}
		out[it.Number] = rng.Intn(len(it.Options))
	}
	return out
}

func TestScore_AnsweredCountsPerDomain(t *testing.T) {
	res, err := Score(Default(), ResponseSet{1: 4, 2: 0, 19: 1})
	if err != nil {
		t.Fatalf("Score error: %v", err)
	}
	if got := res.Answered[DomainExposure]; got != 2 {
		t.Errorf("Answered[exposure] = %d, want 2", got)
	}
	if got := res.Answered[DomainTemporal]; got != 1 {
		t.Errorf("Answered[temporal] = %d, want 1", got)
	}
	if res.Assessed(DomainOutcomes) {
		t.Error("Assessed(outcomes) = true with no outcome item answered")
	}
	if !res.Assessed(DomainTemporal) {
		t.Error("Assessed(temporal) = false after answering item 19")
	}
}

func TestResult_AssessedWithoutCounts(t *testing.T) {
	r := Result{Total: 3, Subscales: map[Domain]float64{DomainTemporal: 3}}
	if !r.Assessed(DomainTemporal) {
		t.Error("hand-built result should count present subscales as assessed")
	}
	if r.Assessed(DomainExposure) {
		t.Error("hand-built result should not count absent subscales as assessed")
	}
}
