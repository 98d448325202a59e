package email

// SendContactWelcomeEmail greets a newly registered contact.
func (c *Client) SendContactWelcomeEmail(to, name string) error {
	data := map[string]string{
		"ContactName": name,
	}

	return c.SendEmail(
		to,
		"You have been added to our contacts",
		TemplateContactWelcome,
		data,
	)
}
