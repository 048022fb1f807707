package screening

import "sort"

// ResponseSet maps an item number to the chosen option index.
type ResponseSet map[int]int

// Result is the outcome of scoring a response set.
// Total always equals the sum of the four subscales.
type Result struct {
	Total     float64            `json:"total"`
	Subscales map[Domain]float64 `json:"subscales"`

	// Answered counts the answered items per domain. A domain with no
	// answered item still has a zero subscale.
	Answered map[Domain]int `json:"answered,omitempty"`
}

// Assessed reports whether at least one item of the domain was answered.
// A Result built by hand without Answered counts every domain present in
// Subscales as assessed.
func (r Result) Assessed(d Domain) bool {
	if r.Answered == nil {
		_, ok := r.Subscales[d]
		return ok
	}
	return r.Answered[d] > 0
}

// Score computes the total and the per-domain subscales for a response set.
//
// Every key must name an item of the catalog and every value must be a
// valid option index for that item; otherwise a *ResponseError is
// returned. Items the client did not answer contribute zero. An empty
// set fails with ErrNoResponses.
func Score(cat Catalog, responses ResponseSet) (Result, error) {
	if len(responses) == 0 {
		return Result{}, ErrNoResponses
	}

	// Validate in item order so the reported error is deterministic.
	numbers := make([]int, 0, len(responses))
	for n := range responses {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	for _, n := range numbers {
		idx := responses[n]
		it, ok := cat.Item(n)
		if !ok {
			return Result{}, &ResponseError{Item: n, Index: idx, Reason: "unknown item"}
		}
		if idx < 0 || idx >= len(it.Weights) {
			return Result{}, &ResponseError{Item: n, Index: idx, Reason: "option index out of range"}
		}
	}

	res := Result{
		Subscales: make(map[Domain]float64, len(validDomains)),
		Answered:  make(map[Domain]int, len(validDomains)),
	}
	for _, d := range Domains() {
		res.Subscales[d] = 0
		res.Answered[d] = 0
	}

	for _, it := range cat.Items {
		idx, answered := responses[it.Number]
		if !answered {
			continue
		}
		w := it.Weights[idx]
		res.Total += w
		res.Subscales[it.Domain] += w
		res.Answered[it.Domain]++
	}

	return res, nil
}
