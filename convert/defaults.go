package convert

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/rlch/ogm"
)

type integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

func registerDefaults(r *Registry) {
	must(Register(r, "string", identity[string], expect[string]("string")))
	must(Register(r, "bool", identity[bool], expect[bool]("bool")))

	registerInt[int](r, "int", math.MinInt, math.MaxInt)
	registerInt[int8](r, "int8", math.MinInt8, math.MaxInt8)
	registerInt[int16](r, "int16", math.MinInt16, math.MaxInt16)
	registerInt[int32](r, "int32", math.MinInt32, math.MaxInt32)
	registerInt[int32](r, "rune", math.MinInt32, math.MaxInt32)
	registerInt[int64](r, "int64", math.MinInt64, math.MaxInt64)
	registerInt[uint](r, "uint", 0, math.MaxInt64)
	registerInt[uint8](r, "uint8", 0, math.MaxUint8)
	registerInt[uint8](r, "byte", 0, math.MaxUint8)
	registerInt[uint16](r, "uint16", 0, math.MaxUint16)
	registerInt[uint32](r, "uint32", 0, math.MaxUint32)
	registerInt[uint64](r, "uint64", 0, math.MaxInt64)

	must(Register(r, "float64", func(f float64) (any, error) { return f, nil }, toFloat64))
	must(Register(r, "float32", func(f float32) (any, error) { return float64(f), nil }, func(v any) (float32, error) {
		f, err := toFloat64(v)

		return float32(f), err
	}))

	// Byte slices are stored as byte arrays, not lists of integers.
	must(r.Register("[]byte", Converter{
		ToGraph:   scalarTo("[]byte", identity[[]byte]),
		FromGraph: scalarFrom(expect[[]byte]("[]byte")),
	}))
	must(r.Register("[]uint8", Converter{
		ToGraph:   scalarTo("[]uint8", identity[[]byte]),
		FromGraph: scalarFrom(expect[[]byte]("[]uint8")),
	}))

	must(Register(r, "time.Time", identity[time.Time], toTime))
	must(Register(r, "time.Duration", func(d time.Duration) (any, error) {
		return ogm.DurationOf(d), nil
	}, func(v any) (time.Duration, error) {
		switch d := v.(type) {
		case ogm.Duration:
			return d.Exact(), nil
		case int64:
			return time.Duration(d), nil
		}

		return 0, mismatch("time.Duration", v)
	}))

	must(Register(r, "ogm.Date", identity[ogm.Date], func(v any) (ogm.Date, error) {
		switch d := v.(type) {
		case ogm.Date:
			return d, nil
		case time.Time:
			return ogm.DateOf(d), nil
		}

		return ogm.Date{}, mismatch("ogm.Date", v)
	}))
	must(Register(r, "ogm.LocalDateTime", identity[ogm.LocalDateTime], func(v any) (ogm.LocalDateTime, error) {
		switch d := v.(type) {
		case ogm.LocalDateTime:
			return d, nil
		case time.Time:
			return ogm.LocalDateTime{Time: d}, nil
		}

		return ogm.LocalDateTime{}, mismatch("ogm.LocalDateTime", v)
	}))
	must(Register(r, "ogm.Duration", identity[ogm.Duration], expect[ogm.Duration]("ogm.Duration")))
	must(Register(r, "ogm.Point", identity[ogm.Point], expect[ogm.Point]("ogm.Point")))

	must(Register(r, "uuid.UUID", func(u uuid.UUID) (any, error) {
		return u.String(), nil
	}, func(v any) (uuid.UUID, error) {
		switch u := v.(type) {
		case string:
			id, err := uuid.Parse(u)
			if err != nil {
				return uuid.Nil, fmt.Errorf("%w: %w", ErrNotConvertible, err)
			}

			return id, nil
		case uuid.UUID:
			return u, nil
		}

		return uuid.Nil, mismatch("uuid.UUID", v)
	}))

	must(Register(r, "map[string]any", identity[map[string]any], expect[map[string]any]("map[string]any")))
	must(r.Register("any", Converter{
		ToGraph:   func(v any) (any, error) { return v, nil },
		FromGraph: func(v any) (any, error) { return v, nil },
	}))
	must(r.Register("[]any", Converter{
		ToGraph:   func(v any) (any, error) { return v, nil },
		FromGraph: func(v any) (any, error) { return v, nil },
	}))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func identity[T any](v T) (any, error) {
	return v, nil
}

func expect[T any](name string) func(any) (T, error) {
	return func(v any) (T, error) {
		t, ok := v.(T)
		if !ok {
			var zero T

			return zero, mismatch(name, v)
		}

		return t, nil
	}
}

func registerInt[T integer](r *Registry, name string, lo int64, hi uint64) {
	must(Register(r, name, func(i T) (any, error) {
		if uint64(i) > hi && i > 0 {
			return nil, fmt.Errorf("%w: %v overflows int64", ErrNotConvertible, i)
		}

		return int64(i), nil
	}, func(v any) (T, error) {
		n, err := toInt64(v)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}

		if n < lo || (n > 0 && uint64(n) > hi) {
			return 0, fmt.Errorf("%w: %d overflows %s", ErrNotConvertible, n, name)
		}

		return T(n), nil
	}))
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("%w: %v is not an integer", ErrNotConvertible, n)
		}

		return int64(n), nil
	}

	return 0, mismatch("integer", v)
}

func toFloat64(v any) (float64, error) {
	switch f := v.(type) {
	case float64:
		return f, nil
	case float32:
		return float64(f), nil
	case int64:
		return float64(f), nil
	case int:
		return float64(f), nil
	}

	return 0, mismatch("float", v)
}

func toTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case ogm.LocalDateTime:
		return t.Time, nil
	case ogm.Date:
		return t.Time(), nil
	}

	return time.Time{}, mismatch("time.Time", v)
}
