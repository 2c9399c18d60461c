// Package autostart registers alarm-clockd to start when the user logs in.
package autostart
