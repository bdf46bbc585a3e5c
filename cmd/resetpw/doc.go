// Command resetpw manages the single Photo Culler password from the shell.
//
// Usage:
//
//	resetpw <command>
//
// Commands:
//
//	reset   Reset the password. A password must already have been set up
//	        through the web interface. All existing sessions are invalidated.
//
//	status  Report whether a password is configured.
//
// Environment:
//
//	DATABASE_DIR - Path to database directory (default: /database)
package main
