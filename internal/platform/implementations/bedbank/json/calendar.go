package json

import "github.com/shopspring/decimal"

type CalendarRQ struct {
	From  string `url:"from"`
	To    string `url:"to"`
	Party string `url:"party"`
}

type CalendarRS struct {
	Days []CalendarDayRS `json:"days"`
}

type CalendarDayRS struct {
	Date    string          `json:"date"`
	Status  string          `json:"status"`
	Price   decimal.Decimal `json:"price"`
	Net     decimal.Decimal `json:"net"`
	MinStay int             `json:"minStay"`
}
