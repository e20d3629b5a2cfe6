// Package domain defines the clinic's entities (medicines and directories,
// appointments, reminders and financial records), the calendar helpers they
// share and the sentinel errors every layer maps from.
//
// The subpackages hold the managers that own each collection: inventory,
// schedule, reminder and ledger. They know nothing of one another; the clinic
// package coordinates them.
package domain
