package sms

import (
	"fmt"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

// Client sends plain-text SMS through Twilio
type Client struct {
	api  *twilio.RestClient
	from string
}

// NewClient creates a new Twilio SMS client
func NewClient(accountSID, authToken, from string) *Client {
	return &Client{
		api: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

// Send delivers a text message and returns the provider message SID
func (c *Client) Send(to, body string) (string, error) {
	params := &openapi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(body)

	resp, err := c.api.Api.CreateMessage(params)
	if err != nil {
		return "", fmt.Errorf("failed to send SMS: %w", err)
	}
	if resp.Sid == nil {
		return "", fmt.Errorf("twilio returned no message sid")
	}
	return *resp.Sid, nil
}
