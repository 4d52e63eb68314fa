// Package chatid lists the chats that have recently messaged the bot so an
// operator can find the identifiers to configure as recipients.
package chatid
