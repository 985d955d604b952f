package isomsgsign

// SPDX-License-Identifier: MIT

const samplePacsXML = `<?xml version="1.0" encoding="UTF-8"?>
<BizMsgEnvlp xmlns="urn:iso:std:iso:20022:tech:xsd:envelope.001.001.01">
  <Header>
    <AppHdr xmlns="urn:iso:std:iso:20022:tech:xsd:head.001.001.02">
      <Fr>
        <FIId>
          <LEI>12345678901234567888</LEI>
        </FIId>
      </Fr>
      <To>
        <FIId>
          <LEI>98765432109876543246</LEI>
        </FIId>
      </To>
      <BizMsgIdr>MSGID00001</BizMsgIdr>
      <MsgDefIdr>pacs.008.001.09</MsgDefIdr>
      <CreDt>2026-07-31T10:00:00Z</CreDt>
    </AppHdr>
  </Header>
  <Body>
    <Document xmlns="urn:iso:std:iso:20022:tech:xsd:pacs.008.001.09">
      <FIToFICstmrCdtTrf>
        <GrpHdr>
          <MsgId>GRPID00001</MsgId>
          <CtrlSum>100.00</CtrlSum>
          <IntrBkSttlmDt>2026-07-31</IntrBkSttlmDt>
        </GrpHdr>
        <CdtTrfTxInf>
          <PmtId>
            <EndToEndId>E2E00001</EndToEndId>
            <UETR>6423a3ce-8f1e-4c6e-9d9a-9a9d8e6a1111</UETR>
          </PmtId>
          <IntrBkSttlmAmt Ccy="EUR">100.00</IntrBkSttlmAmt>
        </CdtTrfTxInf>
      </FIToFICstmrCdtTrf>
    </Document>
  </Body>
</BizMsgEnvlp>`

const samplePacsJSON = `{
  "Header": {
    "AppHdr": {
      "Fr": {"FIId": {"LEI": "12345678901234567888"}},
      "To": {"FIId": {"LEI": "98765432109876543246"}},
      "BizMsgIdr": "MSGID00001",
      "MsgDefIdr": "pacs.008.001.09",
      "CreDt": "2026-07-31T10:00:00Z"
    }
  },
  "Body": {
    "Document": {
      "FIToFICstmrCdtTrf": {
        "GrpHdr": {
          "MsgId": "GRPID00001",
          "CtrlSum": 100.00,
          "IntrBkSttlmDt": "2026-07-31"
        },
        "CdtTrfTxInf": {
          "PmtId": {"EndToEndId": "E2E00001", "UETR": "6423a3ce-8f1e-4c6e-9d9a-9a9d8e6a1111"},
          "IntrBkSttlmAmt": {"Amt": 100.00, "Ccy": "EUR"}
        }
      }
    }
  }
}`
