package layout

import "fmt"

// PickupLabel печатается вместо адреса у заказов на самовывоз.
const PickupLabel = "Pickup"

// CardText — строки, которые рендерер выводит внутри карточки.
type CardText struct {
	Header  string
	Client  string
	Address string
	Items   []string
}

// Text формирует содержимое карточки.
func (c Card) Text() CardText {
	address := c.Order.Address
	if c.Order.IsPickup() {
		address = PickupLabel
	}

	items := make([]string, 0, len(c.Order.Items))
	for _, item := range c.Order.Items {
		items = append(items, fmt.Sprintf("• %s ×%d", item.Description, item.Quantity))
	}

	return CardText{
		Header:  fmt.Sprintf("Order %d", c.Number),
		Client:  "Client: " + c.Order.Client,
		Address: "Address: " + address,
		Items:   items,
	}
}
