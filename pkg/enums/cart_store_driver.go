package enums

import "fmt"

// CartStoreDriver names the backend used to mirror cart snapshots.
type CartStoreDriver string

const (
	CartStoreDriverMemory CartStoreDriver = "memory"
	CartStoreDriverFile   CartStoreDriver = "file"
	CartStoreDriverRedis  CartStoreDriver = "redis"
	CartStoreDriverSQL    CartStoreDriver = "sql"
)

var validCartStoreDrivers = []CartStoreDriver{
	CartStoreDriverMemory,
	CartStoreDriverFile,
	CartStoreDriverRedis,
	CartStoreDriverSQL,
}

// String implements fmt.Stringer.
func (d CartStoreDriver) String() string {
	return string(d)
}

// IsValid reports whether the value is a known CartStoreDriver.
func (d CartStoreDriver) IsValid() bool {
	for _, candidate := range validCartStoreDrivers {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseCartStoreDriver converts raw input into a CartStoreDriver.
func ParseCartStoreDriver(value string) (CartStoreDriver, error) {
	for _, candidate := range validCartStoreDrivers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart store driver %q", value)
}
