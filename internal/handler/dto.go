package handler

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/model"
	"github.com/Papparazzi76cm/casa-de-dosa-fusion-sub000/internal/schedule"
)

// flexInt accepts a JSON number or a string. Booking forms post guests
// either way; the engine parses and range-checks the text.
type flexInt string

func (f *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexInt(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexInt(n.String())
	return nil
}

type bookingReq struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Date     string  `json:"date"`
	Time     string  `json:"time"`
	Guests   flexInt `json:"guests"`
	Requests string  `json:"requests"`
}

type editReq struct {
	Date     string  `json:"date"`
	Time     string  `json:"time"`
	Guests   flexInt `json:"guests"`
	Requests *string `json:"requests"`
}

// bookingView is the public shape of a booking. The token hash is never
// exposed.
type bookingView struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Phone     string           `json:"phone"`
	Date      string           `json:"date"`
	Time      string           `json:"time"`
	Session   schedule.Session `json:"session"`
	Guests    int              `json:"guests"`
	Requests  string           `json:"requests,omitempty"`
	Status    model.Status     `json:"status"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func viewOf(b model.Booking) bookingView {
	return bookingView{
		ID:        b.ID,
		Name:      b.Name,
		Email:     b.Email,
		Phone:     b.Phone,
		Date:      b.Date,
		Time:      b.Time,
		Session:   b.Session,
		Guests:    b.Guests,
		Requests:  b.Requests,
		Status:    b.Status,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

type createdResp struct {
	ID             string           `json:"id"`
	Status         model.Status     `json:"status"`
	Session        schedule.Session `json:"session"`
	ManageURL      string           `json:"manage_url,omitempty"`
	Token          string           `json:"token"`
	TokenExpiresAt time.Time        `json:"token_expires_at"`
	Booking        bookingView      `json:"booking"`
}

type blockReq struct {
	Date    string `json:"date"`
	Session string `json:"session"`
	Reason  string `json:"reason"`
}

type blockView struct {
	ID        uint64           `json:"id"`
	Date      string           `json:"date"`
	Session   schedule.Session `json:"session"`
	Reason    string           `json:"reason,omitempty"`
	CreatedBy uint64           `json:"created_by,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

func blockViewOf(b model.BlockedSlot) blockView {
	return blockView{
		ID:        b.ID,
		Date:      b.Date,
		Session:   b.Session,
		Reason:    b.Reason,
		CreatedBy: b.CreatedBy,
		CreatedAt: b.CreatedAt,
	}
}

func parseID(s string) (uint64, bool) {
	id, err := strconv.ParseUint(s, 10, 64)
	return id, err == nil && id > 0
}
