package domain

import "time"

// InboundCommand неизменяемый снимок slash-команды, снятый до запуска
// отложенной работы. Горутина владеет своей копией и никогда не читает
// живое состояние транспорта.
type InboundCommand struct {
	RawBody     []byte
	Timestamp   int64
	Signature   string
	ChannelID   string
	UserID      string
	Command     string
	Text        string
	ResponseURL string
	GroupNames  []string
	AccessKey   string
}

type Group struct {
	Id   int64
	Name string
}

type Project struct {
	Id int64
}

type OpenItem struct {
	Title     string
	WebURL    string
	Upvotes   int
	Downvotes int
	CreatedAt time.Time
	DaysOpen  int
}

// Report маппит отображаемое имя группы на её открытые элементы, старые первыми.
type Report map[string][]OpenItem
