package native

import "strconv"

// Integer is a boxed java.lang.Integer.
type Integer struct {
	Value int32
}

const (
	integerCacheLow  = -128
	integerCacheHigh = 127
)

var integerCache = func() []*Integer {
	c := make([]*Integer, integerCacheHigh-integerCacheLow+1)
	for i := range c {
		c[i] = &Integer{Value: int32(i + integerCacheLow)}
	}
	return c
}()

// IntegerValueOf boxes v. Values in [-128, 127] share one instance, as
// Integer.valueOf does.
func IntegerValueOf(v int32) *Integer {
	if v >= integerCacheLow && v <= integerCacheHigh {
		return integerCache[v-integerCacheLow]
	}
	return &Integer{Value: v}
}

// IntValue unboxes i.
func (i *Integer) IntValue() int32 {
	return i.Value
}

func (i *Integer) String() string {
	return strconv.FormatInt(int64(i.Value), 10)
}
