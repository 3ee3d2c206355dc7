package converter

import (
	"github.com/christinepetrosyan/Timebook/internal/delivery/dto"
	"github.com/christinepetrosyan/Timebook/internal/domain/schedule"
)

func OffersToResponses(offers []schedule.Offer) []dto.OfferResponse {
	responses := make([]dto.OfferResponse, len(offers))
	for i, o := range offers {
		responses[i] = dto.OfferResponse{
			SlotID:    o.SlotID,
			StartTime: o.Range.Start,
			EndTime:   o.Range.End,
			Available: o.Available,
			Status:    string(o.Status),
		}
	}
	return responses
}

func CellsToResponses(cells []schedule.Cell) []dto.GridCellResponse {
	responses := make([]dto.GridCellResponse, len(cells))
	for i, c := range cells {
		responses[i] = dto.GridCellResponse{
			Hour:          c.Hour,
			StartTime:     c.Range.Start,
			EndTime:       c.Range.End,
			Status:        string(c.Status),
			AppointmentID: c.AppointmentID,
			SlotID:        c.SlotID,
		}
	}
	return responses
}
