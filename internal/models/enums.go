package models

// Enum string values are part of the wire contract shared with the UI and
// the node firmware. Do not rename without a migration plan.

type UserRole string

const (
	RoleUnverified    UserRole = "unverified"
	RoleUser          UserRole = "user"
	RoleEditor        UserRole = "editor"
	RoleAdmin         UserRole = "admin"
	RolePublicDisplay UserRole = "public display"
)

func ValidUserRole(v string) bool {
	switch UserRole(v) {
	case RoleUnverified, RoleUser, RoleEditor, RoleAdmin, RolePublicDisplay:
		return true
	}
	return false
}

type UserStatus string

const (
	UserActive    UserStatus = "active"
	UserInactive  UserStatus = "inactive"
	UserSuspended UserStatus = "suspended"
	UserArchived  UserStatus = "archived"
)

func ValidUserStatus(v string) bool {
	switch UserStatus(v) {
	case UserActive, UserInactive, UserSuspended, UserArchived:
		return true
	}
	return false
}

type AccessCardStatus string

const (
	CardActive   AccessCardStatus = "active"
	CardInactive AccessCardStatus = "inactive"
	CardLost     AccessCardStatus = "lost"
	CardStolen   AccessCardStatus = "stolen"
	CardArchived AccessCardStatus = "archived"
)

func ValidAccessCardStatus(v string) bool {
	switch AccessCardStatus(v) {
	case CardActive, CardInactive, CardLost, CardStolen, CardArchived:
		return true
	}
	return false
}

// EmergeAccessLevel is the access classification for the legacy eMerge
// vendor integration.
type EmergeAccessLevel string

const (
	EmergeBusinessHours EmergeAccessLevel = "business hours access"
	EmergeFullDay       EmergeAccessLevel = "full day access"
	EmergeAdmin         EmergeAccessLevel = "admin"
	EmergeBlocked       EmergeAccessLevel = "blocked"
)

func ValidEmergeAccessLevel(v string) bool {
	switch EmergeAccessLevel(v) {
	case EmergeBusinessHours, EmergeFullDay, EmergeAdmin, EmergeBlocked:
		return true
	}
	return false
}

type DeviceType string

const (
	DeviceMachine DeviceType = "machine"
	DeviceDoor    DeviceType = "door"
)

func ValidDeviceType(v string) bool {
	switch DeviceType(v) {
	case DeviceMachine, DeviceDoor:
		return true
	}
	return false
}

type DeviceStatus string

const (
	DeviceAvailable  DeviceStatus = "available"
	DeviceOutOfOrder DeviceStatus = "out of order"
	DeviceOffline    DeviceStatus = "offline"
	DeviceLost       DeviceStatus = "lost"
	DeviceStolen     DeviceStatus = "stolen"
	DeviceOnLoan     DeviceStatus = "on loan"
	DeviceArchived   DeviceStatus = "archived"
)

func ValidDeviceStatus(v string) bool {
	switch DeviceStatus(v) {
	case DeviceAvailable, DeviceOutOfOrder, DeviceOffline, DeviceLost, DeviceStolen, DeviceOnLoan, DeviceArchived:
		return true
	}
	return false
}

type AccessNodeStatus string

const (
	NodeOffline  AccessNodeStatus = "offline"
	NodeIdle     AccessNodeStatus = "idle"
	NodeEnabled  AccessNodeStatus = "enabled"
	NodeInUse    AccessNodeStatus = "in use"
	NodeError    AccessNodeStatus = "error"
	NodeEndOfRun AccessNodeStatus = "end of run"
	NodeLockdown AccessNodeStatus = "lockdown"
	NodeArchived AccessNodeStatus = "archived"
)

func ValidAccessNodeStatus(v string) bool {
	switch AccessNodeStatus(v) {
	case NodeOffline, NodeIdle, NodeEnabled, NodeInUse, NodeError, NodeEndOfRun, NodeLockdown, NodeArchived:
		return true
	}
	return false
}

// ScanAction is the action a node reports when a card is presented.
type ScanAction string

const (
	ScanLogin       ScanAction = "login"
	ScanLogout      ScanAction = "logout"
	ScanHello       ScanAction = "hello"
	ScanAcknowledge ScanAction = "acknowledge"
)

func ValidScanAction(v string) bool {
	switch ScanAction(v) {
	case ScanLogin, ScanLogout, ScanHello, ScanAcknowledge:
		return true
	}
	return false
}

// UserAccessAction distinguishes sign-in from sign-out in the user access log.
type UserAccessAction string

const (
	UserAccessLogin  UserAccessAction = "login"
	UserAccessLogout UserAccessAction = "logout"
)

func ValidUserAccessAction(v string) bool {
	switch UserAccessAction(v) {
	case UserAccessLogin, UserAccessLogout:
		return true
	}
	return false
}
