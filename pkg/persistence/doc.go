// Package persistence stores the peers a device has linked with, so they can
// be reconnected by name after a restart.
//
// The peer book is a JSON file written atomically on every Save.
package persistence
