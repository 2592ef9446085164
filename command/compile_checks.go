package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[CreateTransactionMessage]  = (*CreateTransactionCommand)(nil)
	_ gocmd.Commander[RefreshTransactionMessage] = (*RefreshTransactionCommand)(nil)
	_ gocmd.Commander[WatchTransactionMessage]   = (*WatchTransactionCommand)(nil)
)
