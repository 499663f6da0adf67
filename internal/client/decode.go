package client

import "mockbase/pkg/domain"

// Decode converts response rows into typed entities.
func Decode[T any](records []domain.Record) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, r := range records {
		v, err := domain.FromRecord[T](r)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// DecodeSingle converts a single-row response into a typed entity. ok is false
// when the response carried no row.
func DecodeSingle[T any](resp SingleResponse) (v T, ok bool, err error) {
	if resp.Data == nil {
		return v, false, nil
	}
	v, err = domain.FromRecord[T](resp.Data)
	if err != nil {
		return v, false, err
	}
	return v, true, nil
}
