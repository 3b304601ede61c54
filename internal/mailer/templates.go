package mailer

import "fmt"

// Welcome is sent after registration.
func Welcome(to, name string) Message {
	return Message{
		To:       to,
		ToName:   name,
		Subject:  "Welcome to FitZone",
		Markdown: fmt.Sprintf("# Hi %s!\n\nYour FitZone account is ready. Book your first class from the dashboard.", name),
	}
}

// Notice wraps an in-app notification as an email.
func Notice(to, name, title, body string) Message {
	return Message{
		To:       to,
		ToName:   name,
		Subject:  title,
		Markdown: fmt.Sprintf("## %s\n\n%s\n\n_FitZone_", title, body),
	}
}

// SharedInvite tells the second person of a shared plan how to activate.
func SharedInvite(to, name, ownerName, code string) Message {
	return Message{
		To:      to,
		ToName:  name,
		Subject: "Your FitZone shared membership",
		Markdown: fmt.Sprintf("Hi %s,\n\n%s added you to a two-person membership.\n\n"+
			"Activate your account with the code **%s** within 30 days.", name, ownerName, code),
	}
}

// OrderReceipt summarises a placed order.
func OrderReceipt(to, name, reference string, total int64) Message {
	return Message{
		To:       to,
		ToName:   name,
		Subject:  "Order " + reference + " confirmed",
		Markdown: fmt.Sprintf("Thanks %s!\n\nOrder **%s** was placed. Total: **$%d**.", name, reference, total),
	}
}
