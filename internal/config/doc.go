// Package config defines the settings shared by alarm-clock and alarm-clockd
// and provides helpers to load, validate, save and watch them.
//
// Settings come from a YAML file, then a .env file in the working directory,
// then ALARMCLOCK_* environment variables; later sources win.
package config
