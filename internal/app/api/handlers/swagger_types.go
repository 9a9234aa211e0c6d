package handlers

import (
	"github.com/fatflowers/memberpay/internal/app/service/order"
	"github.com/fatflowers/memberpay/internal/app/service/statistics"
	"github.com/fatflowers/memberpay/pkg/response"
	"github.com/fatflowers/memberpay/pkg/types"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

type RespCreateOrder struct {
	Code    response.APIResponseCode  `json:"code"`
	Message string                    `json:"message"`
	Data    order.CreateOrderResponse `json:"data"`
}

type RespVerifyPayment struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    verifyPaymentResp        `json:"data"`
}

type RespMembership struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    types.UserMembershipInfo `json:"data"`
}

// RespListOrders wraps ListOrdersResponse in the standard envelope.
type RespListOrders struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ListOrdersResponse       `json:"data"`
}

type RespReconcile struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    order.ReconcileResult    `json:"data"`
}

// RespStatistic wraps StatisticResponse in the standard envelope.
type RespStatistic struct {
	Code    response.APIResponseCode     `json:"code"`
	Message string                       `json:"message"`
	Data    statistics.StatisticResponse `json:"data"`
}

type RespPlans struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    PlansResponse            `json:"data"`
}

type RespOrderAudit struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    OrderAuditResponse       `json:"data"`
}

type RespInspectOrder struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    InspectOrderResponse     `json:"data"`
}
