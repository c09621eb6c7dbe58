package services

import (
	"fmt"
	"html"
	"sync"

	"github.com/Govind-619/ShuttleHub/models"
	"github.com/Govind-619/ShuttleHub/utils"
)

// Notifier sends order emails in the background. Delivery failures are
// logged and never affect the operation that triggered them.
type Notifier struct {
	mailer    utils.Mailer
	storeName string
	wg        sync.WaitGroup
}

func NewNotifier(mailer utils.Mailer, storeName string) *Notifier {
	if mailer == nil {
		mailer = utils.LogMailer{}
	}
	return &Notifier{mailer: mailer, storeName: storeName}
}

// Wait blocks until queued emails have been handed to the mailer
func (n *Notifier) Wait() {
	if n == nil {
		return
	}
	n.wg.Wait()
}

func (n *Notifier) send(to, subject, body string) {
	if n == nil || to == "" {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		if err := n.mailer.Send(to, subject, body); err != nil {
			utils.LogError("Failed to send %q to %s: %v", subject, to, err)
			return
		}
		utils.LogInfo("Sent %q to %s", subject, to)
	}()
}

// OrderPlaced is sent for cash on delivery orders, which skip payment confirmation
func (n *Notifier) OrderPlaced(order *models.Order) {
	subject := fmt.Sprintf("[%s] Order %s received", n.storeName, order.OrderNumber)
	body := fmt.Sprintf(`
		<h2>Thank you for your order, %s!</h2>
		<p>We have received order <strong>%s</strong> and will prepare it shortly.</p>
		%s
		<p>You will pay <strong>%s VND</strong> on delivery.</p>
	`, html.EscapeString(order.CustomerName), order.OrderNumber, itemsTable(order), order.Total.StringFixed(0))
	n.send(order.CustomerEmail, subject, body)
}

// PaymentConfirmed is sent once when an online payment is verified
func (n *Notifier) PaymentConfirmed(order *models.Order) {
	subject := fmt.Sprintf("[%s] Payment received for %s", n.storeName, order.OrderNumber)
	body := fmt.Sprintf(`
		<h2>Payment confirmed</h2>
		<p>Hi %s, we received <strong>%s VND</strong> for order <strong>%s</strong>.</p>
		%s
		<p>You earned <strong>%s</strong> loyalty points.</p>
	`, html.EscapeString(order.CustomerName), order.Total.StringFixed(0), order.OrderNumber, itemsTable(order), order.PointsEarned.StringFixed(0))
	n.send(order.CustomerEmail, subject, body)
}

// StatusChanged is sent when an order moves to a new status
func (n *Notifier) StatusChanged(order *models.Order) {
	subject := fmt.Sprintf("[%s] Order %s is now %s", n.storeName, order.OrderNumber, order.Status)
	body := fmt.Sprintf(`
		<h2>Order update</h2>
		<p>Hi %s, your order <strong>%s</strong> is now <strong>%s</strong>.</p>
	`, html.EscapeString(order.CustomerName), order.OrderNumber, order.Status)
	if order.Note != "" {
		body += fmt.Sprintf("<p>Note: %s</p>", html.EscapeString(order.Note))
	}
	n.send(order.CustomerEmail, subject, body)
}

func itemsTable(order *models.Order) string {
	rows := ""
	for _, item := range order.Items {
		rows += fmt.Sprintf("<tr><td>%s</td><td>%d</td><td>%s</td></tr>",
			html.EscapeString(item.ProductName), item.Quantity, item.Total.StringFixed(0))
	}
	return "<table><tr><th>Item</th><th>Qty</th><th>Total</th></tr>" + rows + "</table>"
}
