// Package event defines the order notification envelope and its typed variants.
//
// Every frame on the push channel is a JSON object of the form
//
//	{"type": "order.status", "data": {...}}
//
// A relay may wrap that object once more under its own "data" key; Decode removes
// exactly one such layer. Known order types decode into OrderNew, OrderStatus and
// OrderCompleted; any other type is a Notification carried uninterpreted. Known
// types whose payload fails the presence checks become Unknown.
package event
