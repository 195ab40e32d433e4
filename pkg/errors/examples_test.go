package errors_test

import (
	"fmt"
	"net/http"

	"github.com/placelink/placelink/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	err := errors.NewNotFoundError("relation", "2014167")

	if errors.IsNotFound(err) {
		fmt.Println(err)
	}

	// Output: relation 2014167 not found
}

// Example_conflict shows how an existing tag is classified.
func Example_conflict() {
	same := errors.NewConflictError("relation", "111", "wikidata", "Q28513", "Q28513")
	other := errors.NewConflictError("relation", "111", "wikidata", "Q1", "Q28513")

	fmt.Println(errors.IsAlreadyExists(same), errors.IsConflict(same))
	fmt.Println(errors.IsAlreadyExists(other), errors.IsConflict(other))
	fmt.Println(other)

	// Output:
	// true false
	// false true
	// relation 111 already has wikidata=Q1 (wanted Q28513)
}

// Example_aPIError demonstrates classifying remote API failures.
func Example_aPIError() {
	err := &errors.APIError{
		Service:    "wikidata",
		StatusCode: http.StatusOK,
		Code:       "maxlag",
		Message:    "Waiting for replicas",
	}

	if errors.IsRateLimited(err) {
		fmt.Println("slow down:", err)
	}

	// Output: slow down: API error from wikidata (maxlag): Waiting for replicas
}

// Example_wrapIO shows wrapping a filesystem failure.
func Example_wrapIO() {
	err := errors.WrapIO("read", "matches.csv", fmt.Errorf("permission denied"))
	fmt.Println(err)

	// Output: IO error during read of matches.csv: permission denied
}
