package enums

import "fmt"

// HostingLocation identifies a facility where hosted hardware runs.
type HostingLocation string

const (
	HostingLocationUS       HostingLocation = "us"
	HostingLocationEthiopia HostingLocation = "ethiopia"
	HostingLocationUAE      HostingLocation = "uae"
)

var validHostingLocations = []HostingLocation{
	HostingLocationUS,
	HostingLocationEthiopia,
	HostingLocationUAE,
}

// String implements fmt.Stringer.
func (h HostingLocation) String() string {
	return string(h)
}

// IsValid reports whether the value is a known HostingLocation.
func (h HostingLocation) IsValid() bool {
	for _, candidate := range validHostingLocations {
		if candidate == h {
			return true
		}
	}
	return false
}

// ParseHostingLocation converts raw input into a HostingLocation.
func ParseHostingLocation(value string) (HostingLocation, error) {
	for _, candidate := range validHostingLocations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid hosting location %q", value)
}

// HostingStatus tracks the lifecycle of a hosting request.
type HostingStatus string

const (
	HostingStatusPending  HostingStatus = "pending"
	HostingStatusPaid     HostingStatus = "paid"
	HostingStatusActive   HostingStatus = "active"
	HostingStatusRejected HostingStatus = "rejected"
)

var validHostingStatuses = []HostingStatus{
	HostingStatusPending,
	HostingStatusPaid,
	HostingStatusActive,
	HostingStatusRejected,
}

// String implements fmt.Stringer.
func (h HostingStatus) String() string {
	return string(h)
}

// IsValid reports whether the value is a known HostingStatus.
func (h HostingStatus) IsValid() bool {
	for _, candidate := range validHostingStatuses {
		if candidate == h {
			return true
		}
	}
	return false
}

// ParseHostingStatus converts raw input into a HostingStatus.
func ParseHostingStatus(value string) (HostingStatus, error) {
	for _, candidate := range validHostingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid hosting status %q", value)
}

// MonitoringType says who watches the hosted machines.
type MonitoringType string

const (
	MonitoringTypeInternal MonitoringType = "internal"
	MonitoringTypeExternal MonitoringType = "external"
)

var validMonitoringTypes = []MonitoringType{
	MonitoringTypeInternal,
	MonitoringTypeExternal,
}

// String implements fmt.Stringer.
func (m MonitoringType) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MonitoringType.
func (m MonitoringType) IsValid() bool {
	for _, candidate := range validMonitoringTypes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMonitoringType converts raw input into a MonitoringType.
func ParseMonitoringType(value string) (MonitoringType, error) {
	for _, candidate := range validMonitoringTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid monitoring type %q", value)
}
