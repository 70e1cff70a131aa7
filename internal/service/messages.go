package service

import (
	"fmt"
	"strings"
	"time"
)

// Customer-facing texts
const (
	MsgSlotTaken        = "ช่วงเวลานี้ไม่ว่าง กรุณาเลือกเวลาอื่น"
	MsgBookingCreated   = "สร้างคำขอจองแล้ว กรุณาส่งสลิปในแชต LINE"
	MsgStartBooking     = "เริ่มจองคิวได้เลยค่ะ👇"
	MsgSlipReceived     = "รับสลิปเรียบร้อยค่ะ ✅ แอดมินจะตรวจสอบให้เร็วที่สุด"
	MsgNoPendingBooking = `ไม่พบคำขอจองที่รอยืนยัน หากสงสัยพิมพ์ "จองคิว" ได้เลยค่ะ`
	MsgNoCustomer       = "ยังไม่พบข้อมูลลูกค้า กรุณากดลิงก์จองใหม่อีกครั้งค่ะ"
	MsgSlipUploadFailed = "อัปโหลดสลิปล้มเหลว ลองใหม่อีกครั้งค่ะ"

	// BookingKeyword starts the booking flow in chat
	BookingKeyword = "จองคิว"
)

func depositConfirmedMessage(serviceName string, startAt time.Time) string {
	return fmt.Sprintf("ยืนยันมัดจำสำเร็จ ✅\nบริการ: %s\nนัด: %s", serviceName, FormatThaiTime(startAt))
}

func depositRejectedMessage(reason string) string {
	lines := []string{"ขออภัย ไม่สามารถยืนยันมัดจำได้ ❌"}
	if reason = strings.TrimSpace(reason); reason != "" {
		lines = append(lines, "เหตุผล: "+reason)
	}
	lines = append(lines, "โปรดส่งสลิปใหม่หรือติดต่อแอดมินค่ะ")
	return strings.Join(lines, "\n")
}

func reminderMessage(serviceName string, startAt time.Time) string {
	return fmt.Sprintf("แจ้งเตือนนัดพรุ่งนี้ 📅\n%s — %s", serviceName, FormatThaiTime(startAt))
}
