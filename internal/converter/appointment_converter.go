package converter

import (
	"github.com/christinepetrosyan/Timebook/internal/delivery/dto"
	"github.com/christinepetrosyan/Timebook/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:              appointment.ID,
		UserID:          appointment.UserID,
		MasterID:        appointment.MasterID,
		ServiceID:       appointment.ServiceID,
		ServiceOptionID: appointment.ServiceOptionID,
		StartTime:       appointment.StartTime,
		EndTime:         appointment.EndTime,
		Status:          string(appointment.Status),
		Notes:           appointment.Notes,
		CreatedAt:       appointment.CreatedAt,
		UpdatedAt:       appointment.UpdatedAt,
	}
}

func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}

// BookingToResponse attaches the catalog quote to a freshly created appointment.
func BookingToResponse(appointment *entity.Appointment, quote *entity.Quote) *dto.BookingResponse {
	return &dto.BookingResponse{
		Appointment:     *AppointmentToResponse(appointment),
		DurationMinutes: int(quote.Duration.Minutes()),
		Price:           quote.Price,
	}
}
